// Package alerts holds the alert model and the in-memory active-alert store.
//
// The store is the only mutable shared state in the engine. Newly generated
// alerts are merged in one atomic step per pipeline run; a dedup key of
// (user, type, calendar day) makes overlapping runs idempotent — whichever
// run lands first for a given day wins and the other batch is dropped.
package alerts

import "time"

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Type identifies what an alert is about.
type Type string

const (
	TypeHighRisk Type = "high_risk"
	TypeCaution  Type = "caution"
	TypeLowLoad  Type = "low_load"
	TypeNoData   Type = "no_data"
	TypeReminder Type = "reminder"
)

// Priority orders alerts in the active view.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// rank maps priorities to sort weight, highest first.
var rank = map[Priority]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

// Alert is one warning produced by rule evaluation. The core never hard
// deletes alerts from a run's perspective: dismissal and expiry are
// soft-filtered out of the active view.
type Alert struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Type              Type       `json:"type"`
	Priority          Priority   `json:"priority"`
	Title             string     `json:"title"`
	Message           string     `json:"message"`
	AcwrValue         *float64   `json:"acwr_value,omitempty"`
	ThresholdExceeded string     `json:"threshold_exceeded,omitempty"`
	IsRead            bool       `json:"is_read"`
	IsDismissed       bool       `json:"is_dismissed"`
	CreatedAt         time.Time  `json:"created_at"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the alert's expiry has passed.
func (a *Alert) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

// Active reports whether the alert belongs in the active view.
func (a *Alert) Active(now time.Time) bool {
	return !a.IsDismissed && !a.Expired(now)
}
