// Package scheduler drives the evaluation pipeline: a fixed-interval ticker
// plus an on-demand trigger, both calling the same idempotent run entry
// point. The alert store's dedup makes overlapping invocations safe, so no
// locking happens here.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/pipeline"
)

// DefaultInterval is the production tick cadence.
const DefaultInterval = 30 * time.Minute

// Scheduler re-runs the pipeline on a timer and on demand.
type Scheduler struct {
	pl       *pipeline.Pipeline
	interval time.Duration
	trigger  chan struct{}
	logger   *slog.Logger
}

// New creates a Scheduler. A non-positive interval falls back to
// DefaultInterval.
func New(pl *pipeline.Pipeline, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		pl:       pl,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		logger:   logger,
	}
}

// Trigger requests an out-of-band run. Non-blocking; a request while one is
// already queued is collapsed into it.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Start runs an immediate pass, then loops on the ticker and the trigger
// channel until ctx is cancelled. Blocks; intended to be called with `go`.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Pipeline scheduler started", "interval", s.interval)

	s.pl.Run(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.pl.Run(ctx)
		case <-s.trigger:
			s.logger.Info("Manual pipeline run triggered")
			s.pl.Run(ctx)
		case <-ctx.Done():
			s.logger.Info("Pipeline scheduler stopped")
			return
		}
	}
}
