// Package notify signals an external dispatcher when a high-priority alert
// is newly created. Delivery transport is out of scope here — the default
// dispatcher only logs. Signals are throttled to one per athlete per
// six hours so a flapping ratio cannot cause a notification storm.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
)

// DefaultMinInterval is the default per-athlete throttle window.
const DefaultMinInterval = 6 * time.Hour

// Dispatcher receives the signal. Implementations push to FCM, e-mail, or
// whatever the product wires in.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert alerts.Alert)
}

// LogDispatcher logs would-be dispatches. Nil-safe: a nil dispatcher is a
// no-op, matching how the service runs without a delivery integration.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a logging dispatcher.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch logs the signal.
func (d *LogDispatcher) Dispatch(_ context.Context, alert alerts.Alert) {
	if d == nil {
		return
	}
	d.logger.Info("High-priority alert signal",
		"user_id", alert.UserID, "type", alert.Type, "title", alert.Title)
}

// Notifier filters newly created alerts down to rate-limited high-priority
// signals.
type Notifier struct {
	dispatcher Dispatcher

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    time.Duration
}

// New creates a Notifier. A minInterval of zero falls back to
// DefaultMinInterval.
func New(dispatcher Dispatcher, minInterval time.Duration) *Notifier {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Notifier{
		dispatcher: dispatcher,
		limiters:   make(map[string]*rate.Limiter),
		every:      minInterval,
	}
}

// AlertsCreated inspects a merge's surviving alerts and signals the
// dispatcher for each athlete with a new high-priority alert, at most once
// per throttle window per athlete.
func (n *Notifier) AlertsCreated(ctx context.Context, created []alerts.Alert) {
	if n.dispatcher == nil {
		return
	}
	for _, a := range created {
		if a.Priority != alerts.PriorityHigh {
			continue
		}
		if !n.allow(a.UserID) {
			continue
		}
		n.dispatcher.Dispatch(ctx, a)
	}
}

// allow consumes one token from the athlete's limiter: one event per
// throttle window, with a burst of one.
func (n *Notifier) allow(userID string) bool {
	n.mu.Lock()
	l, ok := n.limiters[userID]
	if !ok {
		l = rate.NewLimiter(rate.Every(n.every), 1)
		n.limiters[userID] = l
	}
	n.mu.Unlock()
	return l.Allow()
}
