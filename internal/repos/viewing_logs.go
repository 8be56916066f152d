package repos

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reeldiary-server/internal/model"
	"reeldiary-server/internal/store"
)

type ViewingLogsRepo struct {
	q *store.Queries
}

// ListRecent returns up to limit logs, most recently watched first.
func (r *ViewingLogsRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int32) ([]model.ViewingLog, error) {
	rows, err := r.q.ListRecentViewingLogs(ctx, store.ListRecentViewingLogsParams{UserID: pgUUID(userID), Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]model.ViewingLog, 0, len(rows))
	for _, l := range rows {
		out = append(out, model.ViewingLog{
			ID:          l.ID,
			UserID:      fromPgUUID(l.UserID),
			MovieID:     l.MovieID,
			Rating:      l.Rating,
			WatchedDate: dateVal(l.WatchedDate),
		})
	}
	return out, nil
}

// ListLoggedMovieIDs returns every distinct movie the user ever logged.
func (r *ViewingLogsRepo) ListLoggedMovieIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	return r.q.ListLoggedMovieIDs(ctx, pgUUID(userID))
}

func (r *ViewingLogsRepo) Create(ctx context.Context, userID uuid.UUID, movieID int64, rating float64, watched time.Time) (int64, error) {
	return r.q.InsertViewingLog(ctx, store.InsertViewingLogParams{
		UserID:      pgUUID(userID),
		MovieID:     movieID,
		Column3:     rating,
		WatchedDate: pgDate(watched),
	})
}
