package notify_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/notify"
)

type captureDispatcher struct {
	mu  sync.Mutex
	got []alerts.Alert
}

func (c *captureDispatcher) Dispatch(_ context.Context, a alerts.Alert) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, a)
}

func (c *captureDispatcher) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func highAlert(user string) alerts.Alert {
	return alerts.Alert{ID: user + "-h", UserID: user, Type: alerts.TypeHighRisk, Priority: alerts.PriorityHigh}
}

func TestOnlyHighPrioritySignals(t *testing.T) {
	capture := &captureDispatcher{}
	n := notify.New(capture, time.Hour)

	n.AlertsCreated(context.Background(), []alerts.Alert{
		{ID: "a1", UserID: "u1", Priority: alerts.PriorityMedium},
		{ID: "a2", UserID: "u1", Priority: alerts.PriorityLow},
		highAlert("u1"),
	})

	assert.Equal(t, 1, capture.count())
}

func TestThrottlePerUser(t *testing.T) {
	capture := &captureDispatcher{}
	n := notify.New(capture, time.Hour)

	ctx := context.Background()
	n.AlertsCreated(ctx, []alerts.Alert{highAlert("u1")})
	n.AlertsCreated(ctx, []alerts.Alert{highAlert("u1")}) // within the window, suppressed
	n.AlertsCreated(ctx, []alerts.Alert{highAlert("u2")}) // separate limiter

	assert.Equal(t, 2, capture.count())
	assert.Equal(t, "u1", capture.got[0].UserID)
	assert.Equal(t, "u2", capture.got[1].UserID)
}

func TestNilDispatcherIsNoop(t *testing.T) {
	n := notify.New(nil, time.Hour)
	n.AlertsCreated(context.Background(), []alerts.Alert{highAlert("u1")})
	// Nothing to assert beyond not panicking.
}
