package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"reeldiary-server/internal/model"
	"reeldiary-server/internal/store"
)

type Repository struct {
	db *pgxpool.Pool
	q  *store.Queries

	Users           *UsersRepo
	ViewingLogs     *ViewingLogsRepo
	Recommendations *RecommendationsRepo
}

func New(db *pgxpool.Pool) *Repository {
	q := store.New(db)
	r := &Repository{db: db, q: q}
	r.Users = &UsersRepo{q: q}
	r.ViewingLogs = &ViewingLogsRepo{q: q}
	r.Recommendations = &RecommendationsRepo{db: db, q: q}
	return r
}

// Forwarders so a *Repository satisfies the recommender's store and the read API.
func (r *Repository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return r.Users.ListUserIDs(ctx)
}

func (r *Repository) ListRecentViewingLogs(ctx context.Context, userID uuid.UUID, limit int32) ([]model.ViewingLog, error) {
	return r.ViewingLogs.ListRecent(ctx, userID, limit)
}
func (r *Repository) ListLoggedMovieIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	return r.ViewingLogs.ListLoggedMovieIDs(ctx, userID)
}

func (r *Repository) ReplaceRecommendations(ctx context.Context, userID uuid.UUID, recs []model.Recommendation) error {
	return r.Recommendations.ReplaceForUser(ctx, userID, recs)
}
func (r *Repository) DeleteRecommendations(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.Recommendations.DeleteForUser(ctx, userID)
}
func (r *Repository) ListRecommendationsPage(ctx context.Context, userID uuid.UUID, category string, cursorID *int64, limit int32) ([]model.Recommendation, error) {
	return r.Recommendations.ListPage(ctx, userID, category, cursorID, limit)
}
func (r *Repository) CountRecommendations(ctx context.Context, userID uuid.UUID, category string) (int64, error) {
	return r.Recommendations.Count(ctx, userID, category)
}

func (r *Repository) HasUsers(ctx context.Context) (bool, error) { return r.Users.HasUsers(ctx) }
func (r *Repository) CreateUser(ctx context.Context, id uuid.UUID, username string) error {
	return r.Users.Create(ctx, id, username)
}
func (r *Repository) CreateViewingLog(ctx context.Context, userID uuid.UUID, movieID int64, rating float64, watched time.Time) (int64, error) {
	return r.ViewingLogs.Create(ctx, userID, movieID, rating, watched)
}
