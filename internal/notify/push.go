package notify

import (
	"context"
	"log/slog"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
)

// TokenLookup resolves the registered device tokens for an athlete.
type TokenLookup func(ctx context.Context, userID string) ([]string, error)

// FCMDispatcher sends push notifications via Firebase Cloud Messaging.
// Nil-safe: when not configured, Dispatch is a no-op.
type FCMDispatcher struct {
	credentialsFile string
	tokens          TokenLookup
	logger          *slog.Logger
	// TODO: Add firebase.google.com/go/v4/messaging.Client when the FCM
	// dependency is added. For now this is a structured placeholder that
	// logs send attempts.
}

// NewFCMDispatcher creates an FCM dispatcher from a service account
// credentials file. Returns nil if credentialsFile is empty (push disabled).
func NewFCMDispatcher(credentialsFile string, tokens TokenLookup, logger *slog.Logger) *FCMDispatcher {
	if credentialsFile == "" {
		return nil
	}
	return &FCMDispatcher{
		credentialsFile: credentialsFile,
		tokens:          tokens,
		logger:          logger,
	}
}

// Dispatch resolves the athlete's device tokens and pushes the alert.
func (d *FCMDispatcher) Dispatch(ctx context.Context, alert alerts.Alert) {
	if d == nil {
		return
	}

	tokens, err := d.tokens(ctx, alert.UserID)
	if err != nil {
		d.logger.Error("Device token lookup failed",
			"user_id", alert.UserID, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	// TODO: Replace with the actual FCM client call:
	//   msg := &messaging.MulticastMessage{
	//       Tokens:       tokens,
	//       Notification: &messaging.Notification{Title: alert.Title, Body: alert.Message},
	//       Data:         map[string]string{"alert_id": alert.ID, "type": string(alert.Type)},
	//   }
	//   resp, err := d.client.SendEachForMulticast(ctx, msg)

	d.logger.Info("FCM send (pending integration)",
		"user_id", alert.UserID, "tokens", len(tokens), "title", alert.Title)
}
