package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/config"
	"github.com/namefreezers/weather-now/internal/handlers"
	"github.com/namefreezers/weather-now/internal/repository"
	"github.com/namefreezers/weather-now/internal/viewmodel"
	"github.com/namefreezers/weather-now/internal/weather"
)

func main() {
	// 1) Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// 2) Initialize structured logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3) Build the weather API (mock and/or OpenWeatherMap, optional cache)
	api, err := weather.BuildAPI(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize weather API", zap.Error(err))
	}

	// 4) Optional snapshot history in Postgres
	var history repository.HistoryStore
	if cfg.DatabaseURL != "" {
		db, err := repository.OpenDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		history = repository.NewHistoryStore(db, logger)
		if err := history.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare history schema", zap.Error(err))
		}
	}

	// 5) Repository and view-model; the view-model triggers the first refresh
	repo := repository.NewWeatherRepository(api, history, logger)
	vm := viewmodel.New(ctx, repo, logger)

	// 6) HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(vm, history, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting API server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	vm.Close()
}
