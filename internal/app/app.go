// Package app holds the wiring shared by the server and the one-shot CLI.
package app

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/thejerf/suture/v4"

	"reeldiary-server/internal/catalog"
	"reeldiary-server/internal/config"
	"reeldiary-server/internal/recommend"
	"reeldiary-server/pkg/cache"
	"reeldiary-server/pkg/tmdb"
)

// SetupLogging configures the global zerolog logger from cfg.
func SetupLogging(cfg config.Config, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("env", cfg.Env).Logger()
}

// OpenCache returns a Valkey cache when configured and reachable, else an in-memory one.
// The returned close func is always safe to call.
func OpenCache(cfg config.Config) (cache.Cache, func()) {
	if cfg.ValkeyAddr == "" {
		return cache.NewInMemory(), func() {}
	}
	vc, err := cache.NewValkey(cfg.ValkeyAddr, cfg.ValkeyPassword)
	if err != nil {
		log.Error().Err(err).Msg("valkey connect failed, using in-memory cache")
		return cache.NewInMemory(), func() {}
	}
	return vc, vc.Close
}

// NewRunner assembles TMDb client, catalog gateway and recommendation runner.
func NewRunner(cfg config.Config, store recommend.Store, c cache.Cache) *recommend.Runner {
	if cfg.TMDBAPIKey == "" {
		log.Warn().Msg("TMDB_API_KEY not set; catalog calls will fail and users will get no recommendations")
	}
	client := tmdb.New(cfg.TMDBAPIKey,
		tmdb.WithLanguage(cfg.TMDBLanguage),
		tmdb.WithRateLimit(cfg.TMDBRateLimit, max(1, int(cfg.TMDBRateLimit))),
	)
	gcfg := catalog.DefaultConfig()
	gcfg.Region = cfg.TMDBRegion
	gcfg.Language = cfg.TMDBLanguage
	gateway := catalog.New(client, c, gcfg, log.Logger)

	rcfg := recommend.DefaultConfig()
	rcfg.UserConcurrency = cfg.RecommendUserConcurrency
	rcfg.ClearOnEmpty = cfg.RecommendClearOnEmpty
	return recommend.NewRunner(store, gateway, c, rcfg, log.Logger)
}

// NewSupervisor builds the root supervisor, logging its events through zerolog.
func NewSupervisor(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook: func(e suture.Event) {
			log.Warn().Str("event", e.String()).Fields(e.Map()).Msg("supervisor event")
		},
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          15 * time.Second,
	})
}
