// Package catalog is the recommender's only window onto the external movie catalog.
//
// Every operation is best-effort: failures are logged and counted, then reported as
// "no data" (an empty list or a nil record) so a flaky upstream shrinks the candidate
// pool instead of aborting a run.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"reeldiary-server/internal/metrics"
	"reeldiary-server/pkg/cache"
	"reeldiary-server/pkg/tmdb"
)

// API is the subset of the TMDb client the gateway uses. *tmdb.Client satisfies it.
type API interface {
	MovieRecommendations(ctx context.Context, movieID int64, page int) (*tmdb.Page, error)
	Discover(ctx context.Context, q tmdb.DiscoverQuery, page int) (*tmdb.Page, error)
	MovieDetails(ctx context.Context, movieID int64) (*tmdb.MovieDetails, error)
	WatchProviders(ctx context.Context, movieID int64) (map[string]tmdb.RegionProviders, error)
}

// QualityFloor keeps obscure or poorly rated titles out of discovery queries.
type QualityFloor struct {
	MinVoteCount   int
	MinVoteAverage float64
}

type Config struct {
	Region       string
	Language     string
	MaxPages     int
	Floor        QualityFloor
	DetailsTTL   time.Duration
	ProvidersTTL time.Duration
	Breaker      BreakerSettings
}

func DefaultConfig() Config {
	return Config{
		Region:       "US",
		Language:     "en-US",
		MaxPages:     3,
		Floor:        QualityFloor{MinVoteCount: 1000, MinVoteAverage: 6.5},
		DetailsTTL:   24 * time.Hour,
		ProvidersTTL: 6 * time.Hour,
		Breaker:      DefaultBreakerSettings(),
	}
}

type Gateway struct {
	api    API
	cache  cache.Cache
	cb     *gobreaker.CircuitBreaker[any]
	cfg    Config
	logger zerolog.Logger
}

// New builds a gateway. c may be nil to disable response caching.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(api API, c cache.Cache, cfg Config, logger zerolog.Logger) *Gateway {
	def := DefaultConfig()
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = def.MaxPages
	}
	if cfg.Region == "" {
		cfg.Region = def.Region
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = def.Breaker
	}
	logger = logger.With().Str("component", "catalog").Logger()
	return &Gateway{
		api:    api,
		cache:  c,
		cb:     newBreaker(cfg.Breaker, logger),
		cfg:    cfg,
		logger: logger,
	}
}

func (g *Gateway) execute(endpoint string, fn func() (any, error)) (any, error) {
	res, err := g.cb.Execute(fn)
	if err != nil {
		metrics.CatalogRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}
	metrics.CatalogRequests.WithLabelValues(endpoint, "ok").Inc()
	return res, nil
}

type pageFunc func(ctx context.Context, page int) (*tmdb.Page, error)

// fetchPaged collects up to MaxPages pages in order. It stops at the provider's last
// page, and a failed page ends pagination while keeping what was already collected.
func (g *Gateway) fetchPaged(ctx context.Context, endpoint string, fetch pageFunc) []tmdb.Result {
	var out []tmdb.Result
	for page := 1; page <= g.cfg.MaxPages; page++ {
		p, err := as[*tmdb.Page](g.execute(endpoint, func() (any, error) { return fetch(ctx, page) }))
		if err != nil || p == nil {
			g.logger.Debug().Err(err).Str("endpoint", endpoint).Int("page", page).Msg("catalog page fetch failed; keeping partial results")
			break
		}
		out = append(out, p.Results...)
		if page >= p.TotalPages {
			break
		}
	}
	return out
}

// SimilarMovies returns TMDb's recommendations for movieID.
func (g *Gateway) SimilarMovies(ctx context.Context, movieID int64) []tmdb.Result {
	return g.fetchPaged(ctx, "movie_recommendations", func(ctx context.Context, page int) (*tmdb.Page, error) {
		return g.api.MovieRecommendations(ctx, movieID, page)
	})
}

// DiscoverByGenre returns well-rated movies in a genre, best rated first.
func (g *Gateway) DiscoverByGenre(ctx context.Context, genreID int64) []tmdb.Result {
	q := g.discoverQuery()
	q.GenreID = genreID
	return g.fetchPaged(ctx, "discover", func(ctx context.Context, page int) (*tmdb.Page, error) {
		return g.api.Discover(ctx, q, page)
	})
}

// DiscoverByDirector returns well-rated movies with personID in the crew, best rated first.
func (g *Gateway) DiscoverByDirector(ctx context.Context, personID int64) []tmdb.Result {
	q := g.discoverQuery()
	q.CrewID = personID
	return g.fetchPaged(ctx, "discover", func(ctx context.Context, page int) (*tmdb.Page, error) {
		return g.api.Discover(ctx, q, page)
	})
}

func (g *Gateway) discoverQuery() tmdb.DiscoverQuery {
	return tmdb.DiscoverQuery{
		MinVoteCount:   g.cfg.Floor.MinVoteCount,
		MinVoteAverage: g.cfg.Floor.MinVoteAverage,
		SortBy:         "vote_average.desc",
	}
}

// MovieDetails returns the full record for id, or nil when the catalog has none or the call fails.
func (g *Gateway) MovieDetails(ctx context.Context, id int64) *tmdb.MovieDetails {
	key := fmt.Sprintf("tmdb:movie:%d:%s", id, g.cfg.Language)
	var cached tmdb.MovieDetails
	if g.cacheGet(ctx, key, &cached) && cached.ID != 0 {
		metrics.CatalogRequests.WithLabelValues("movie_details", "cache_hit").Inc()
		return &cached
	}
	m, err := as[*tmdb.MovieDetails](g.execute("movie_details", func() (any, error) {
		return g.api.MovieDetails(ctx, id)
	}))
	if err != nil || m == nil {
		g.logger.Debug().Err(err).Int64("movie_id", id).Msg("movie details unavailable")
		return nil
	}
	g.cacheSet(ctx, key, m, g.cfg.DetailsTTL)
	return m
}

// StreamingProviders returns the subscription (flatrate) providers for id in the configured region.
func (g *Gateway) StreamingProviders(ctx context.Context, id int64) []tmdb.Provider {
	key := fmt.Sprintf("tmdb:providers:%d:%s", id, g.cfg.Region)
	var cached []tmdb.Provider
	if g.cacheGet(ctx, key, &cached) && len(cached) > 0 {
		metrics.CatalogRequests.WithLabelValues("watch_providers", "cache_hit").Inc()
		return cached
	}
	regions, err := as[map[string]tmdb.RegionProviders](g.execute("watch_providers", func() (any, error) {
		return g.api.WatchProviders(ctx, id)
	}))
	if err != nil {
		g.logger.Debug().Err(err).Int64("movie_id", id).Msg("watch providers unavailable")
		return nil
	}
	providers := regions[g.cfg.Region].Flatrate
	if len(providers) > 0 {
		g.cacheSet(ctx, key, providers, g.cfg.ProvidersTTL)
	}
	return providers
}

func (g *Gateway) cacheGet(ctx context.Context, key string, dst any) bool {
	if g.cache == nil {
		return false
	}
	s, ok := g.cache.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(s), dst) == nil
}

func (g *Gateway) cacheSet(ctx context.Context, key string, v any, ttl time.Duration) {
	if g.cache == nil || ttl <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, key, string(b), ttl); err != nil {
		g.logger.Debug().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}
