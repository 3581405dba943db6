// Package main is the entry point for the marketpulse dashboard backend.
// It caches upstream market snapshots, derives the dashboard views from them
// and serves those views over HTTP, with live job events on a websocket.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/marketpulse/internal/config"
	"github.com/aristath/marketpulse/internal/di"
	"github.com/aristath/marketpulse/internal/server"
	"github.com/aristath/marketpulse/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("upstream", cfg.UpstreamURL).
		Str("data_dir", cfg.DataDir).
		Msg("Starting marketpulse")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close cache database")
		}
	}()

	srv := server.New(server.Config{
		Log:                log,
		Port:               cfg.Port,
		DevMode:            cfg.DevMode,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		CacheDB:            container.CacheDB,
		Cache:              container.Cache,
		Bus:                container.EventBus,
		Scheduler:          container.Scheduler,
		Market:             container.MarketService,
		Portfolio:          container.PortfolioService,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Warm the cache so the first page load doesn't wait on upstream
	go func() {
		if err := container.Scheduler.RunNow(jobs.Refresh); err != nil {
			log.Warn().Err(err).Msg("Initial snapshot refresh incomplete")
		}
	}()

	container.Scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop accepting requests first, then let running jobs finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	container.Scheduler.Stop()

	log.Info().Msg("Server stopped")
}
