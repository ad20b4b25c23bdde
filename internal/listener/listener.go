// Package listener provides a Postgres LISTEN/NOTIFY consumer for real-time
// pipeline triggering. It holds a dedicated pgx connection (not from the
// pool) listening on the `training_logged` channel.
//
// When an athlete logs a session, an insert trigger on training_entries
// fires pg_notify and this consumer receives the event and requests a
// pipeline run, debounced so a burst of log entries results in one run.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	channel          = "training_logged"
	debounceWindow   = 10 * time.Second
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// TrainingEvent is the JSON payload from pg_notify('training_logged', ...).
type TrainingEvent struct {
	UserID    string `json:"user_id"`
	EntryDate string `json:"entry_date"`
	Timestamp int64  `json:"ts"`
}

// Start opens a dedicated connection and listens on the training_logged
// channel. It reconnects automatically on connection loss. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, trigger func(), logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, trigger, logger)
		if ctx.Err() != nil {
			logger.Info("Training listener stopped (context cancelled)")
			return
		}

		logger.Error("Training listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, trigger func(), logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+channel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Training listener connected", "channel", channel)

	var lastTrigger time.Time
	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		var event TrainingEvent
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			logger.Warn("Failed to parse training event",
				"payload", notification.Payload, "error", err)
			continue
		}

		logger.Info("Training event received",
			"user_id", event.UserID, "entry_date", event.EntryDate)

		// Debounce: a burst of log entries collapses into one run. The
		// scheduler's trigger channel also drops requests while a run is
		// pending, so this only spares log noise.
		if time.Since(lastTrigger) < debounceWindow {
			continue
		}
		lastTrigger = time.Now()
		trigger()
	}
}
