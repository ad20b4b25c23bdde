// Package team combines per-athlete ratio series into a per-date team
// average restricted to a roster. Members without a ratio on a date are
// excluded from both the average and the athlete count — missing data is
// absence, never zero.
package team

import (
	"math"
	"sort"
	"time"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/acwr"
)

// Point is the team-level ratio observation for one date.
type Point struct {
	Date         time.Time `json:"date"`
	TeamRatio    float64   `json:"team_ratio"`
	AthleteCount int       `json:"athlete_count"` // members contributing data, not roster size
	Band         acwr.Band `json:"band"`
}

// Aggregate builds the team series over the union of all members' point
// dates. Dates where no member carries a ratio are omitted entirely.
func Aggregate(series map[string][]acwr.Point) []Point {
	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[time.Time]*bucket)

	for _, points := range series {
		for _, p := range points {
			if p.Ratio == nil {
				continue
			}
			b, ok := buckets[p.Date]
			if !ok {
				b = &bucket{}
				buckets[p.Date] = b
			}
			b.sum += *p.Ratio
			b.count++
		}
	}

	out := make([]Point, 0, len(buckets))
	for date, b := range buckets {
		ratio := round2(b.sum / float64(b.count))
		out = append(out, Point{
			Date:         date,
			TeamRatio:    ratio,
			AthleteCount: b.count,
			Band:         acwr.Classify(&ratio),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Latest returns the most recent team point, or nil when the series is empty.
func Latest(series []Point) *Point {
	if len(series) == 0 {
		return nil
	}
	return &series[len(series)-1]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
