package load_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/load"
)

func f(v float64) *float64 { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNormalizeSessionLoadResolution(t *testing.T) {
	tests := []struct {
		name     string
		entry    load.TrainingEntry
		expected float64
		dropped  bool
	}{
		{"explicit load wins", load.TrainingEntry{UserID: "u1", Date: day("2024-03-01"), RPE: f(5), DurationMinutes: f(60), Load: f(420)}, 420, false},
		{"rpe times duration", load.TrainingEntry{UserID: "u1", Date: day("2024-03-01"), RPE: f(7), DurationMinutes: f(45)}, 315, false},
		{"zero explicit load falls back", load.TrainingEntry{UserID: "u1", Date: day("2024-03-01"), RPE: f(6), DurationMinutes: f(30), Load: f(0)}, 180, false},
		{"negative explicit load falls back", load.TrainingEntry{UserID: "u1", Date: day("2024-03-01"), RPE: f(6), DurationMinutes: f(30), Load: f(-10)}, 180, false},
		{"missing rpe dropped", load.TrainingEntry{UserID: "u1", Date: day("2024-03-01"), DurationMinutes: f(60)}, 0, true},
		{"missing duration dropped", load.TrainingEntry{UserID: "u1", Date: day("2024-03-01"), RPE: f(5)}, 0, true},
		{"zero product dropped", load.TrainingEntry{UserID: "u1", Date: day("2024-03-01"), RPE: f(0), DurationMinutes: f(60)}, 0, true},
		{"nan rpe dropped", load.TrainingEntry{UserID: "u1", Date: day("2024-03-01"), RPE: f(math.NaN()), DurationMinutes: f(60)}, 0, true},
		{"inf explicit load dropped", load.TrainingEntry{UserID: "u1", Date: day("2024-03-01"), Load: f(math.Inf(1))}, 0, true},
		{"all fields missing dropped", load.TrainingEntry{UserID: "u1", Date: day("2024-03-01")}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := load.Normalize([]load.TrainingEntry{tt.entry})
			if tt.dropped {
				assert.Empty(t, points)
				return
			}
			require.Len(t, points, 1)
			assert.Equal(t, tt.expected, points[0].Load)
		})
	}
}

func TestNormalizeSumsSameDayEntries(t *testing.T) {
	entries := []load.TrainingEntry{
		{UserID: "u1", Date: day("2024-03-01"), RPE: f(5), DurationMinutes: f(60)},
		{UserID: "u1", Date: day("2024-03-01").Add(18 * time.Hour), Load: f(100)},
		{UserID: "u1", Date: day("2024-03-02"), Load: f(50)},
	}

	points := load.Normalize(entries)
	require.Len(t, points, 2)
	assert.Equal(t, 400.0, points[0].Load) // 300 + 100 on the same day
	assert.Equal(t, day("2024-03-01"), points[0].Date)
	assert.Equal(t, 50.0, points[1].Load)
}

func TestNormalizeSeparatesUsers(t *testing.T) {
	entries := []load.TrainingEntry{
		{UserID: "u2", Date: day("2024-03-01"), Load: f(80)},
		{UserID: "u1", Date: day("2024-03-01"), Load: f(120)},
	}

	points := load.Normalize(entries)
	require.Len(t, points, 2)
	assert.Equal(t, "u1", points[0].UserID)
	assert.Equal(t, "u2", points[1].UserID)
}

func TestDayTruncatesToUTCMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	stamp := time.Date(2024, 3, 1, 23, 30, 0, 0, loc) // 14:30 UTC
	assert.Equal(t, day("2024-03-01"), load.Day(stamp))
}
