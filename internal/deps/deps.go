package deps

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reeldiary-server/internal/model"
	"reeldiary-server/internal/recommend"

	pkgcache "reeldiary-server/pkg/cache"
	pkgsigner "reeldiary-server/pkg/signer"
)

// Recommender runs recommendation generation. *recommend.Runner satisfies it.
type Recommender interface {
	RunAll(ctx context.Context, runID string) (recommend.Summary, error)
	RunUser(ctx context.Context, userID uuid.UUID) (recommend.UserResult, error)
}

// RecommendationReader serves persisted recommendations. *repos.Repository satisfies it.
type RecommendationReader interface {
	ListRecommendationsPage(ctx context.Context, userID uuid.UUID, category string, cursorID *int64, limit int32) ([]model.Recommendation, error)
	CountRecommendations(ctx context.Context, userID uuid.UUID, category string) (int64, error)
}

// ServerDeps holds the dependencies required by handlers and server.
type ServerDeps struct {
	Recommender Recommender
	Reader      RecommendationReader
	Cache       pkgcache.Cache
	Signer      pkgsigner.Codec
	// CronSecret guards the trigger endpoint. Empty rejects every trigger request.
	CronSecret string
	RunTimeout time.Duration
	Name       string
	StartedAt  time.Time
}
