// Package recommend generates the daily per-user movie recommendations.
//
// A run mines each user's recent viewing logs into up to three signals (their top
// rated recent movie, favourite genre and favourite director), turns every signal
// into catalog candidates, filters those against the user's history and regional
// streaming availability, and replaces the user's stored recommendation set.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"reeldiary-server/internal/metrics"
	"reeldiary-server/internal/model"
	"reeldiary-server/pkg/cache"
	"reeldiary-server/pkg/tmdb"
)

// ErrRunInProgress is returned when a run is requested while another one holds the runner.
var ErrRunInProgress = errors.New("recommendation run already in progress")

// Store is the persistence the runner needs.
type Store interface {
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
	ListRecentViewingLogs(ctx context.Context, userID uuid.UUID, limit int32) ([]model.ViewingLog, error)
	ListLoggedMovieIDs(ctx context.Context, userID uuid.UUID) ([]int64, error)
	ReplaceRecommendations(ctx context.Context, userID uuid.UUID, recs []model.Recommendation) error
	DeleteRecommendations(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Config struct {
	RecentLogs            int
	TargetPerCategory     int
	ValidationConcurrency int
	UserConcurrency       int
	// ClearOnEmpty deletes a user's previous recommendations when a run finds no
	// acceptable candidates for them. Users below the signal floor are never touched, and
	// neither are users for whom the catalog returned no candidates at all.
	ClearOnEmpty bool
}

func DefaultConfig() Config {
	return Config{
		RecentLogs:            RecentLogLimit,
		TargetPerCategory:     TargetPerCategory,
		ValidationConcurrency: 4,
		UserConcurrency:       1,
	}
}

type Outcome string

const (
	OutcomeRecommended        Outcome = "recommended"
	OutcomeInsufficientSignal Outcome = "insufficient_signal"
	OutcomeNoCandidates       Outcome = "no_candidates"
	OutcomeFailed             Outcome = "failed"
)

type UserResult struct {
	UserID     uuid.UUID      `json:"user_id"`
	Outcome    Outcome        `json:"outcome"`
	Accepted   int            `json:"accepted"`
	ByCategory map[string]int `json:"by_category,omitempty"`
	Cleared    bool           `json:"cleared,omitempty"`
}

// Summary aggregates one run. It carries counts only, never per-user detail.
type Summary struct {
	RunID              string        `json:"run_id"`
	Users              int           `json:"users"`
	Recommended        int           `json:"recommended"`
	InsufficientSignal int           `json:"insufficient_signal"`
	NoCandidates       int           `json:"no_candidates"`
	Failed             int           `json:"failed"`
	Accepted           int           `json:"accepted"`
	Duration           time.Duration `json:"duration"`
}

func (s *Summary) add(r UserResult) {
	switch r.Outcome {
	case OutcomeRecommended:
		s.Recommended++
	case OutcomeInsufficientSignal:
		s.InsufficientSignal++
	case OutcomeNoCandidates:
		s.NoCandidates++
	case OutcomeFailed:
		s.Failed++
	}
	s.Accepted += r.Accepted
}

// CacheKeyPrefix is the prefix under which a user's recommendation listings are cached.
func CacheKeyPrefix(userID uuid.UUID) string {
	return "recommendations:" + userID.String() + ":"
}

type Runner struct {
	store      Store
	extractor  *Extractor
	aggregator *Aggregator
	cache      cache.Cache
	cfg        Config
	logger     zerolog.Logger

	running sync.Mutex
}

// NewRunner wires a runner. c is only used for invalidating cached listings and may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRunner(store Store, catalog Catalog, c cache.Cache, cfg Config, logger zerolog.Logger) *Runner {
	def := DefaultConfig()
	if cfg.RecentLogs <= 0 {
		cfg.RecentLogs = def.RecentLogs
	}
	if cfg.TargetPerCategory <= 0 {
		cfg.TargetPerCategory = def.TargetPerCategory
	}
	if cfg.ValidationConcurrency <= 0 {
		cfg.ValidationConcurrency = def.ValidationConcurrency
	}
	if cfg.UserConcurrency <= 0 {
		cfg.UserConcurrency = def.UserConcurrency
	}
	return &Runner{
		store:      store,
		extractor:  NewExtractor(catalog, cfg.ValidationConcurrency),
		aggregator: NewAggregator(catalog, cfg.TargetPerCategory, cfg.ValidationConcurrency),
		cache:      c,
		cfg:        cfg,
		logger:     logger.With().Str("component", "recommend").Logger(),
	}
}

// RunAll regenerates recommendations for every user. A failure for one user is logged
// and counted; only failing to enumerate users, or ctx ending, fails the run.
func (r *Runner) RunAll(ctx context.Context, runID string) (Summary, error) {
	if runID == "" {
		runID = xid.New().String()
	}
	if !r.running.TryLock() {
		metrics.RecommendationRuns.WithLabelValues("skipped").Inc()
		return Summary{RunID: runID}, ErrRunInProgress
	}
	defer r.running.Unlock()

	start := time.Now()
	logger := r.logger.With().Str("run_id", runID).Logger()
	sum := Summary{RunID: runID}

	users, err := r.store.ListUserIDs(ctx)
	if err != nil {
		metrics.RecommendationRuns.WithLabelValues("error").Inc()
		return sum, fmt.Errorf("list users: %w", err)
	}
	sum.Users = len(users)
	logger.Info().Int("users", len(users)).Int("user_concurrency", r.cfg.UserConcurrency).Msg("recommendation run started")

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(r.cfg.UserConcurrency)
	for _, u := range users {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := r.runUser(ctx, u, logger)
			r.observe(logger, res, err)
			mu.Lock()
			sum.add(res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	sum.Duration = time.Since(start)
	metrics.RecommendationRunDuration.Observe(sum.Duration.Seconds())

	if err := ctx.Err(); err != nil {
		metrics.RecommendationRuns.WithLabelValues("error").Inc()
		logger.Warn().Err(err).Int("recommended", sum.Recommended).Msg("recommendation run interrupted")
		return sum, fmt.Errorf("run interrupted: %w", err)
	}
	metrics.RecommendationRuns.WithLabelValues("success").Inc()
	logger.Info().
		Int("users", sum.Users).
		Int("recommended", sum.Recommended).
		Int("insufficient_signal", sum.InsufficientSignal).
		Int("no_candidates", sum.NoCandidates).
		Int("failed", sum.Failed).
		Int("accepted", sum.Accepted).
		Dur("duration", sum.Duration).
		Msg("recommendation run completed")
	return sum, nil
}

// RunUser regenerates recommendations for a single user.
func (r *Runner) RunUser(ctx context.Context, userID uuid.UUID) (UserResult, error) {
	if !r.running.TryLock() {
		return UserResult{UserID: userID}, ErrRunInProgress
	}
	defer r.running.Unlock()
	res, err := r.runUser(ctx, userID, r.logger)
	r.observe(r.logger, res, err)
	return res, err
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (r *Runner) observe(logger zerolog.Logger, res UserResult, err error) {
	metrics.RecommendationUsers.WithLabelValues(string(res.Outcome)).Inc()
	ev := logger.Debug()
	switch {
	case err != nil:
		ev = logger.Error().Err(err)
	case res.Outcome == OutcomeInsufficientSignal:
		ev = logger.Info()
	}
	ev.Str("user_id", res.UserID.String()).
		Str("outcome", string(res.Outcome)).
		Int("accepted", res.Accepted).
		Bool("cleared", res.Cleared).
		Msg("user processed")
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (r *Runner) runUser(ctx context.Context, userID uuid.UUID, logger zerolog.Logger) (res UserResult, err error) {
	res = UserResult{UserID: userID}
	defer func() {
		if p := recover(); p != nil {
			res.Outcome = OutcomeFailed
			err = fmt.Errorf("panic while processing user: %v", p)
		}
	}()

	logs, err := r.store.ListRecentViewingLogs(ctx, userID, int32(r.cfg.RecentLogs))
	if err != nil {
		res.Outcome = OutcomeFailed
		return res, fmt.Errorf("list viewing logs: %w", err)
	}
	signals, err := r.extractor.Extract(ctx, logs)
	if errors.Is(err, ErrInsufficientSignal) {
		res.Outcome = OutcomeInsufficientSignal
		return res, nil
	}
	if err != nil {
		res.Outcome = OutcomeFailed
		return res, fmt.Errorf("extract signals: %w", err)
	}

	watched, err := r.store.ListLoggedMovieIDs(ctx, userID)
	if err != nil {
		res.Outcome = OutcomeFailed
		return res, fmt.Errorf("list logged movies: %w", err)
	}
	claims := NewClaims(watched)
	for _, l := range logs {
		claims.MarkWatched(l.MovieID)
	}

	producers, answered := trackAnswers(Producers(r.aggregator.catalog, signals))
	recs := r.aggregator.Collect(ctx, userID, producers, claims, signals.SourceMovieIDs)
	if len(recs) == 0 {
		res.Outcome = OutcomeNoCandidates
		switch {
		case !r.cfg.ClearOnEmpty:
		case !*answered:
			logger.Warn().Str("user_id", userID.String()).Msg("catalog returned no candidates, keeping previous recommendations")
		default:
			n, err := r.store.DeleteRecommendations(ctx, userID)
			if err != nil {
				res.Outcome = OutcomeFailed
				return res, fmt.Errorf("clear stale recommendations: %w", err)
			}
			res.Cleared = n > 0
			r.invalidate(ctx, logger, userID)
		}
		return res, nil
	}

	if err := r.store.ReplaceRecommendations(ctx, userID, recs); err != nil {
		res.Outcome = OutcomeFailed
		return res, fmt.Errorf("replace recommendations: %w", err)
	}
	r.invalidate(ctx, logger, userID)

	res.Outcome = OutcomeRecommended
	res.Accepted = len(recs)
	res.ByCategory = map[string]int{}
	for _, rec := range recs {
		res.ByCategory[rec.Category]++
	}
	return res, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (r *Runner) invalidate(ctx context.Context, logger zerolog.Logger, userID uuid.UUID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.DeletePrefix(ctx, CacheKeyPrefix(userID)); err != nil {
		logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to invalidate recommendations cache")
	}
}

// trackAnswers wraps producers so the caller can tell an empty catalog answer from
// candidates that were all rejected. Producers run sequentially on the user's goroutine.
func trackAnswers(producers []Producer) ([]Producer, *bool) {
	answered := new(bool)
	for i := range producers {
		fetch := producers[i].Candidates
		producers[i].Candidates = func(ctx context.Context) []tmdb.Result {
			res := fetch(ctx)
			if len(res) > 0 {
				*answered = true
			}
			return res
		}
	}
	return producers, answered
}
