package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/config"
	"github.com/namefreezers/weather-now/internal/repository"
	"github.com/namefreezers/weather-now/internal/weather"
)

func main() {
	// 1) Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("configuration error: the recorder needs DATABASE_URL or POSTGRES_* to be set")
	}

	// 2) Init logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3) Open DB
	db, err := repository.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	history := repository.NewHistoryStore(db, logger)
	if err := history.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to prepare history schema", zap.Error(err))
	}

	// 4) Wire up weather API and repository
	api, err := weather.BuildAPI(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize weather API", zap.Error(err))
	}
	repo := repository.NewWeatherRepository(api, history, logger)

	// 5) One refresh per tick; a failed tick waits for the next one
	c := cron.New()
	_, err = c.AddFunc(cfg.RecordCron, func() {
		if err := repo.Refresh(ctx); err != nil {
			logger.Warn("scheduled refresh failed", zap.Error(err))
			return
		}
		logger.Info("weather snapshot recorded")
	})
	if err != nil {
		logger.Fatal("unable to schedule cron job", zap.String("cronSpec", cfg.RecordCron), zap.Error(err))
	}

	logger.Info("starting recorder", zap.String("cronSpec", cfg.RecordCron))
	c.Start()

	<-ctx.Done()
	logger.Info("stopping recorder")
	<-c.Stop().Done()
}
