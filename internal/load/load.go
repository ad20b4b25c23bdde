// Package load normalizes raw training entries into one daily load value
// per athlete. Session load is the explicit value when present, otherwise
// rpe × duration. Entries that cannot produce a positive load are dropped —
// absent data is a normal condition, not a fault.
package load

import (
	"math"
	"sort"
	"time"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// TrainingEntry is one logged session as supplied by the upstream store.
// Immutable once normalized.
type TrainingEntry struct {
	UserID          string
	Date            time.Time
	RPE             *float64 // subjective session intensity
	DurationMinutes *float64
	Load            *float64 // explicit session load, overrides rpe × duration
}

// Point is the normalized daily load for one athlete. Load is always > 0.
type Point struct {
	UserID string
	Date   time.Time
	Load   float64
}

// --------------------------------------------------------------------------
// Normalization
// --------------------------------------------------------------------------

// Day truncates t to its calendar day in UTC. All window arithmetic in the
// engine operates on these day-resolution timestamps.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Normalize collapses entries into one Point per (user, day), summing loads
// of same-day sessions. Entries without a usable load are skipped silently.
// Output is sorted by user then date.
func Normalize(entries []TrainingEntry) []Point {
	type key struct {
		user string
		day  time.Time
	}

	sums := make(map[key]float64)
	for _, e := range entries {
		l, ok := sessionLoad(e)
		if !ok {
			continue
		}
		sums[key{e.UserID, Day(e.Date)}] += l
	}

	points := make([]Point, 0, len(sums))
	for k, l := range sums {
		points = append(points, Point{UserID: k.user, Date: k.day, Load: l})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].UserID != points[j].UserID {
			return points[i].UserID < points[j].UserID
		}
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// sessionLoad resolves the load for a single entry. The explicit value wins
// when positive; otherwise rpe × duration. Returns false when neither path
// yields a positive finite number.
func sessionLoad(e TrainingEntry) (float64, bool) {
	if e.Load != nil && finite(*e.Load) && *e.Load > 0 {
		return *e.Load, true
	}
	if e.RPE == nil || e.DurationMinutes == nil {
		return 0, false
	}
	if !finite(*e.RPE) || !finite(*e.DurationMinutes) {
		return 0, false
	}
	product := *e.RPE * *e.DurationMinutes
	if !finite(product) || product <= 0 {
		return 0, false
	}
	return product, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
