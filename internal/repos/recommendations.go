package repos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reeldiary-server/internal/model"
	"reeldiary-server/internal/store"
)

type RecommendationsRepo struct {
	db *pgxpool.Pool
	q  *store.Queries
}

// ReplaceForUser deletes the user's recommendations and inserts recs in one transaction,
// so readers see either the old set or the new one.
func (r *RecommendationsRepo) ReplaceForUser(ctx context.Context, userID uuid.UUID, recs []model.Recommendation) error {
	uid := pgUUID(userID)
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		q := r.q.WithTx(tx)
		if _, err := q.DeleteRecommendationsByUser(ctx, uid); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		for _, rec := range recs {
			src := rec.SourceMovieIDs
			if src == nil {
				src = []int64{}
			}
			if err := q.InsertRecommendation(ctx, store.InsertRecommendationParams{
				UserID:             uid,
				RecommendedMovieID: rec.RecommendedMovieID,
				SourceMovieIds:     src,
				Reason:             rec.Reason,
				Category:           rec.Category,
			}); err != nil {
				return fmt.Errorf("insert movie %d: %w", rec.RecommendedMovieID, err)
			}
		}
		return nil
	})
}

func (r *RecommendationsRepo) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.q.DeleteRecommendationsByUser(ctx, pgUUID(userID))
}

// ListPage returns recommendations newest first. category "" means all; cursorID excludes ids >= it.
func (r *RecommendationsRepo) ListPage(ctx context.Context, userID uuid.UUID, category string, cursorID *int64, limit int32) ([]model.Recommendation, error) {
	cur := int64(0)
	if cursorID != nil {
		cur = *cursorID
	}
	rows, err := r.q.ListRecommendationsByUserPage(ctx, store.ListRecommendationsByUserPageParams{
		UserID:   pgUUID(userID),
		Category: category,
		CursorID: cur,
		Lim:      limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.Recommendation, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Recommendation{
			ID:                 row.ID,
			UserID:             fromPgUUID(row.UserID),
			RecommendedMovieID: row.RecommendedMovieID,
			SourceMovieIDs:     row.SourceMovieIds,
			Reason:             row.Reason,
			Category:           row.Category,
			CreatedAt:          timeVal(row.CreatedAt),
		})
	}
	return out, nil
}

func (r *RecommendationsRepo) Count(ctx context.Context, userID uuid.UUID, category string) (int64, error) {
	return r.q.CountRecommendationsByUser(ctx, store.CountRecommendationsByUserParams{UserID: pgUUID(userID), Category: category})
}
