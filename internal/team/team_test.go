package team_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/acwr"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/team"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func pt(user, date string, ratio *float64) acwr.Point {
	return acwr.Point{UserID: user, Date: day(date), Ratio: ratio}
}

func f(v float64) *float64 { return &v }

func TestAggregateAveragesContributingMembersOnly(t *testing.T) {
	// Three athletes on the roster, only two carry a ratio on March 2.
	series := map[string][]acwr.Point{
		"u1": {pt("u1", "2024-03-01", f(1.0)), pt("u1", "2024-03-02", f(1.2))},
		"u2": {pt("u2", "2024-03-02", f(1.6))},
		"u3": {pt("u3", "2024-03-02", nil)}, // acute load but no baseline yet
	}

	got := team.Aggregate(series)
	require.Len(t, got, 2)

	assert.Equal(t, day("2024-03-01"), got[0].Date)
	assert.Equal(t, 1.0, got[0].TeamRatio)
	assert.Equal(t, 1, got[0].AthleteCount)

	assert.Equal(t, day("2024-03-02"), got[1].Date)
	assert.Equal(t, 1.4, got[1].TeamRatio) // (1.2 + 1.6) / 2
	assert.Equal(t, 2, got[1].AthleteCount)
	assert.Equal(t, acwr.BandCaution, got[1].Band)
}

func TestAggregateRoundsToTwoDecimals(t *testing.T) {
	series := map[string][]acwr.Point{
		"u1": {pt("u1", "2024-03-01", f(1.0))},
		"u2": {pt("u2", "2024-03-01", f(1.0))},
		"u3": {pt("u3", "2024-03-01", f(2.0))},
	}

	got := team.Aggregate(series)
	require.Len(t, got, 1)
	assert.Equal(t, 1.33, got[0].TeamRatio)
}

func TestAggregateOmitsDatesWithoutContributors(t *testing.T) {
	series := map[string][]acwr.Point{
		"u1": {pt("u1", "2024-03-01", nil)},
		"u2": {pt("u2", "2024-03-02", nil)},
	}
	assert.Empty(t, team.Aggregate(series))
	assert.Nil(t, team.Latest(nil))
}

func TestAggregateEmptyRoster(t *testing.T) {
	assert.Empty(t, team.Aggregate(nil))
	assert.Empty(t, team.Aggregate(map[string][]acwr.Point{}))
}

func TestLatest(t *testing.T) {
	series := map[string][]acwr.Point{
		"u1": {pt("u1", "2024-03-01", f(0.5)), pt("u1", "2024-03-03", f(1.9))},
	}
	got := team.Aggregate(series)
	last := team.Latest(got)
	require.NotNil(t, last)
	assert.Equal(t, day("2024-03-03"), last.Date)
	assert.Equal(t, acwr.BandHigh, last.Band)
}
