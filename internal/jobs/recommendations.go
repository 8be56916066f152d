package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"reeldiary-server/internal/recommend"
)

// Runner is what the scheduler triggers. *recommend.Runner satisfies it.
type Runner interface {
	RunAll(ctx context.Context, runID string) (recommend.Summary, error)
}

type DailyConfig struct {
	// HourUTC is the hour of day, 0-23, at which the daily run starts.
	HourUTC      int
	RunOnStartup bool
	// RunTimeout bounds one run; 0 means two hours.
	RunTimeout time.Duration
}

// DailyRecommendations regenerates every user's recommendations once a day.
// A failed run is logged and retried at the next daily slot.
type DailyRecommendations struct {
	runner Runner
	cfg    DailyConfig
	logger zerolog.Logger
	now    func() time.Time
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewDailyRecommendations(r Runner, cfg DailyConfig, logger zerolog.Logger) *DailyRecommendations {
	if cfg.HourUTC < 0 || cfg.HourUTC > 23 {
		cfg.HourUTC = 4
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Hour
	}
	return &DailyRecommendations{
		runner: r,
		cfg:    cfg,
		logger: logger.With().Str("service", "daily-recommendations").Logger(),
		now:    time.Now,
	}
}

// NextRun returns the first instant strictly after now at hour:00 UTC.
func NextRun(now time.Time, hour int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Serve implements suture.Service.
func (s *DailyRecommendations) Serve(ctx context.Context) error {
	s.logger.Info().
		Int("hour_utc", s.cfg.HourUTC).
		Bool("run_on_startup", s.cfg.RunOnStartup).
		Msg("daily recommendations scheduler starting")

	if s.cfg.RunOnStartup {
		s.run(ctx)
	}

	for {
		next := NextRun(s.now(), s.cfg.HourUTC)
		s.logger.Debug().Time("next_run", next).Msg("next recommendation run scheduled")
		t := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			t.Stop()
			s.logger.Info().Msg("daily recommendations scheduler shutting down")
			return ctx.Err()
		case <-t.C:
			s.run(ctx)
		}
	}
}

func (s *DailyRecommendations) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	runID := xid.New().String()
	sum, err := s.runner.RunAll(runCtx, runID)
	switch {
	case errors.Is(err, recommend.ErrRunInProgress):
		s.logger.Info().Str("run_id", runID).Msg("skipping scheduled run, another run is in progress")
	case err != nil:
		s.logger.Error().Err(err).Str("run_id", runID).Msg("scheduled recommendation run failed")
	default:
		s.logger.Info().
			Str("run_id", runID).
			Int("users", sum.Users).
			Int("recommended", sum.Recommended).
			Int("failed", sum.Failed).
			Dur("duration", sum.Duration).
			Msg("scheduled recommendation run finished")
	}
}

func (s *DailyRecommendations) String() string { return "daily-recommendations" }
