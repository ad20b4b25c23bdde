// Package acwr computes the Acute:Chronic Workload Ratio series for one
// athlete and classifies ratio values into risk bands.
//
// The calculator uses the uncoupled formulation: the acute window is the
// trailing 7 days ending on the point date, the chronic baseline is the
// average weekly load over the 21 days preceding the acute window. The two
// windows never overlap, so a hard session is not counted in both.
//
// Every run recomputes the full series from the complete load history.
// Histories are weeks of daily entries, so recompute-from-scratch is cheap
// and avoids stale-window bugs an incremental path would invite.
package acwr

import (
	"sort"
	"time"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/load"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	acuteDays    = 7  // acute window length, inclusive of the point date
	chronicDays  = 21 // chronic window length, ends the day before the acute window
	chronicWeeks = 3

	// MaturityDays is the minimum span of load history, in calendar days,
	// before a ratio is trusted for alerting.
	MaturityDays = 21
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Point is one ratio observation. Ratio is nil when the chronic baseline is
// zero — the athlete trained recently but has no usable history to compare
// against.
type Point struct {
	UserID      string    `json:"user_id"`
	Date        time.Time `json:"date"`
	AcuteLoad   float64   `json:"acute_load"`
	ChronicLoad float64   `json:"chronic_load"`
	Ratio       *float64  `json:"ratio"`
}

// --------------------------------------------------------------------------
// Series calculation
// --------------------------------------------------------------------------

// Series produces one Point per distinct date in the athlete's load history.
// Calendar gaps are not interpolated; a date with an empty acute window
// yields no point at all. Input order does not matter.
func Series(points []load.Point) []Point {
	if len(points) == 0 {
		return nil
	}

	daily := make(map[time.Time]float64, len(points))
	var dates []time.Time
	for _, p := range points {
		d := load.Day(p.Date)
		if _, seen := daily[d]; !seen {
			dates = append(dates, d)
		}
		daily[d] += p.Load
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	userID := points[0].UserID
	series := make([]Point, 0, len(dates))
	for _, d := range dates {
		acute := windowSum(daily, d.AddDate(0, 0, -(acuteDays-1)), d)
		if acute <= 0 {
			continue
		}

		chronicSum := windowSum(daily, d.AddDate(0, 0, -(acuteDays+chronicDays-1)), d.AddDate(0, 0, -acuteDays))
		chronic := chronicSum / chronicWeeks

		pt := Point{UserID: userID, Date: d, AcuteLoad: acute, ChronicLoad: chronic}
		if chronic > 0 {
			r := acute / chronic
			pt.Ratio = &r
		}
		series = append(series, pt)
	}
	return series
}

// Latest returns the most recent point of a series, or nil when empty.
func Latest(series []Point) *Point {
	if len(series) == 0 {
		return nil
	}
	return &series[len(series)-1]
}

// Mature reports whether an athlete's history is long enough for the ratio
// at date d to be trusted. The first recorded load must be at least
// MaturityDays calendar days back, counting both endpoints.
func Mature(firstLoad, d time.Time) bool {
	span := int(load.Day(d).Sub(load.Day(firstLoad)).Hours()/24) + 1
	return span >= MaturityDays
}

// windowSum sums daily loads over [from, to] inclusive.
func windowSum(daily map[time.Time]float64, from, to time.Time) float64 {
	var sum float64
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		sum += daily[d]
	}
	return sum
}
