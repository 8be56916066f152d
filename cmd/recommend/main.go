// Command recommend runs one recommendation pass and exits, for use from an external scheduler.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"reeldiary-server/internal/app"
	"reeldiary-server/internal/config"
	"reeldiary-server/internal/repos"
	pkgdb "reeldiary-server/pkg/db"
)

func main() {
	os.Exit(run())
}

func run() int {
	userFlag := flag.String("user", "", "only regenerate recommendations for this user id")
	timeout := flag.Duration("timeout", 2*time.Hour, "abort the run after this long")
	flag.Parse()

	_ = godotenv.Load() // best-effort
	cfg := config.FromEnv()
	app.SetupLogging(cfg, nil)
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("configuration invalid")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	pool, err := pkgdb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error().Err(err).Msg("db connect failed")
		return 1
	}
	defer pool.Close()

	c, closeCache := app.OpenCache(cfg)
	defer closeCache()

	runner := app.NewRunner(cfg, repos.New(pool), c)

	if *userFlag != "" {
		id, err := uuid.Parse(*userFlag)
		if err != nil {
			log.Error().Err(err).Str("user", *userFlag).Msg("invalid user id")
			return 2
		}
		res, err := runner.RunUser(ctx, id)
		if err != nil {
			log.Error().Err(err).Msg("recommendation run failed")
			return 1
		}
		log.Info().Str("outcome", string(res.Outcome)).Int("accepted", res.Accepted).Msg("done")
		return 0
	}

	sum, err := runner.RunAll(ctx, "")
	if err != nil {
		log.Error().Err(err).Str("run_id", sum.RunID).Msg("recommendation run failed")
		return 1
	}
	log.Info().Str("run_id", sum.RunID).Int("users", sum.Users).Int("failed", sum.Failed).Msg("done")
	return 0
}
