package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DemoStore is the write access the demo seed needs. *repos.Repository satisfies it.
type DemoStore interface {
	HasUsers(ctx context.Context) (bool, error)
	CreateUser(ctx context.Context, id uuid.UUID, username string) error
	CreateViewingLog(ctx context.Context, userID uuid.UUID, movieID int64, rating float64, watched time.Time) (int64, error)
}

// DemoUserID is fixed so a seeded environment can be queried without lookups.
var DemoUserID = uuid.MustParse("00000000-0000-4000-8000-000000000001")

// demoLogs are TMDb ids with ratings, most recent first.
var demoLogs = []struct {
	movieID int64
	rating  float64
}{
	{329865, 5},   // Arrival
	{438631, 4.5}, // Dune
	{157336, 5},   // Interstellar
	{27205, 4},    // Inception
	{492188, 3.5}, // Marriage Story
	{335984, 4.5}, // Blade Runner 2049
}

// SeedDemoIfEmpty creates one demo user with a viewing history when no users exist.
// Intended for testing/dev convenience; no-op once any user exists.
func SeedDemoIfEmpty(ctx context.Context, s DemoStore, now time.Time) error {
	has, err := s.HasUsers(ctx)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	if err := s.CreateUser(ctx, DemoUserID, "demo"); err != nil {
		return fmt.Errorf("create demo user: %w", err)
	}
	for i, l := range demoLogs {
		if _, err := s.CreateViewingLog(ctx, DemoUserID, l.movieID, l.rating, now.AddDate(0, 0, -i)); err != nil {
			return fmt.Errorf("create demo log %d: %w", l.movieID, err)
		}
	}
	log.Info().Str("user_id", DemoUserID.String()).Int("logs", len(demoLogs)).Msg("seeded demo user as users table was empty")
	return nil
}
