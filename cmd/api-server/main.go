package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"reeldiary-server/internal/app"
	"reeldiary-server/internal/config"
	"reeldiary-server/internal/deps"
	"reeldiary-server/internal/jobs"
	"reeldiary-server/internal/migrate"
	"reeldiary-server/internal/repos"
	"reeldiary-server/internal/server"
	pkgdb "reeldiary-server/pkg/db"
	"reeldiary-server/pkg/signer"
)

func main() {
	_ = godotenv.Load() // best-effort
	cfg := config.FromEnv()
	app.SetupLogging(cfg, nil)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pkgdb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()

	if err := migrate.Up(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	c, closeCache := app.OpenCache(cfg)
	defer closeCache()

	repository := repos.New(pool)
	if cfg.SeedDemo && !cfg.IsProduction() {
		if err := jobs.SeedDemoIfEmpty(ctx, repository, time.Now().UTC()); err != nil {
			log.Error().Err(err).Msg("demo seed failed")
		}
	}

	runner := app.NewRunner(cfg, repository, c)
	api := server.New(deps.ServerDeps{
		Recommender: runner,
		Reader:      repository,
		Cache:       c,
		Signer:      signer.NewHMAC(cfg.CursorSecret),
		CronSecret:  cfg.CronSecret,
		Name:        "reeldiary-server",
		StartedAt:   time.Now(),
	}, server.Options{CORSAllowedOrigins: cfg.CORSAllowedOrigins})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sup := app.NewSupervisor("reeldiary")
	sup.Add(server.NewHTTPService(httpSrv, 10*time.Second))
	sup.Add(jobs.NewDailyRecommendations(runner, jobs.DailyConfig{
		HourUTC:      cfg.RecommendHourUTC,
		RunOnStartup: cfg.RecommendOnStartup,
	}, log.Logger))

	log.Info().Str("addr", httpSrv.Addr).Int("recommend_hour_utc", cfg.RecommendHourUTC).Msg("listening")
	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("supervisor stopped")
	}
	log.Info().Msg("shutting down")
}
