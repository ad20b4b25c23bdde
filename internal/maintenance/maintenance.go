// Package maintenance runs periodic background tasks as Go tickers. The
// engine soft-filters dismissed and expired alerts everywhere, so the store
// only needs occasional hygiene: hard-removing entries nothing can ever
// surface again.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	PurgeInterval time.Duration // sweep cadence for dead alerts
	PurgeKeepFor  time.Duration // how long expired/dismissed alerts linger
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		PurgeInterval: time.Hour,
		PurgeKeepFor:  30 * 24 * time.Hour,
	}
}

// Start launches the configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, store *alerts.Store, cfg Config, logger *slog.Logger) {
	if cfg.PurgeInterval <= 0 {
		logger.Info("Maintenance disabled")
		return
	}
	logger.Info("Maintenance ticker started",
		"purge_interval", cfg.PurgeInterval, "keep_for", cfg.PurgeKeepFor)

	ticker := time.NewTicker(cfg.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := store.Purge(time.Now(), cfg.PurgeKeepFor); removed > 0 {
				logger.Info("Purged dead alerts", "count", removed)
			}
		case <-ctx.Done():
			logger.Info("Maintenance ticker stopped")
			return
		}
	}
}
