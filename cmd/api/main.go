// Command api is the Bekuta risk engine service. It runs the evaluation
// pipeline on a schedule and serves the read-model API.
//
// Usage:
//
//	bekuta-api
//	API_PORT=8080 bekuta-api

// @title Bekuta Risk Engine API
// @version 1.0.0
// @description Training-load risk read models: per-athlete ACWR series, team averages, and the deduplicated alert feed produced by the scheduled rule engine.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/api"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/cache"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/config"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/db"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/listener"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/maintenance"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/notify"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/pipeline"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/scheduler"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/snapshot"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/source"

	_ "github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Shared state: alert store and snapshot read models
	alertStore := alerts.NewStore()
	snaps := snapshot.NewStore()
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Pipeline: Postgres source, push dispatcher when FCM is configured
	src := source.NewPGProvider(pool.Pool)
	var dispatcher notify.Dispatcher = notify.NewLogDispatcher(logger)
	if fcm := notify.NewFCMDispatcher(cfg.FCMCredentialsFile, src.DeviceTokens, logger); fcm != nil {
		dispatcher = fcm
		logger.Info("FCM push delivery enabled")
	}
	notifier := notify.New(dispatcher, cfg.NotifyMinInterval)
	pl := pipeline.New(src, alertStore, snaps, notifier, cfg.EvalRole, cfg.EvalScope, logger)
	pl.SetAfterRun(func(pipeline.RunResult) { appCache.Flush() })

	// Scheduler: recurring ticks plus the manual trigger exposed over HTTP
	sched := scheduler.New(pl, cfg.PipelineInterval, logger)
	go sched.Start(ctx)

	// Real-time trigger on new training entries
	if cfg.ListenEnabled {
		go listener.Start(ctx, cfg.DatabaseURL, sched.Trigger, logger)
	}

	// Maintenance: purge long-dead alerts
	go maintenance.Start(ctx, alertStore, maintenance.Config{
		PurgeInterval: cfg.PurgeInterval,
		PurgeKeepFor:  cfg.PurgeKeepFor,
	}, logger)

	// Create router
	router := api.NewRouter(pool, appCache, cfg, alertStore, snaps, sched.Trigger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Bekuta Risk Engine API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
