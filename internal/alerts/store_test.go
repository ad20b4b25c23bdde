package alerts_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func mkAlert(id, user string, typ alerts.Type, prio alerts.Priority, created time.Time, ttl time.Duration) alerts.Alert {
	a := alerts.Alert{
		ID:        id,
		UserID:    user,
		Type:      typ,
		Priority:  prio,
		Title:     fmt.Sprintf("%s alert", typ),
		Message:   "test",
		CreatedAt: created,
	}
	if ttl > 0 {
		exp := created.Add(ttl)
		a.ExpiresAt = &exp
	}
	return a
}

func TestMergeDedupSameDay(t *testing.T) {
	store := alerts.NewStore()

	first := store.Merge(now, []alerts.Alert{
		mkAlert("a1", "u1", alerts.TypeHighRisk, alerts.PriorityHigh, now, 48*time.Hour),
	})
	require.Len(t, first.Created, 1)
	assert.Zero(t, first.Deduped)

	// A second scheduler tick ten minutes later regenerates the same alert.
	later := now.Add(10 * time.Minute)
	second := store.Merge(later, []alerts.Alert{
		mkAlert("a2", "u1", alerts.TypeHighRisk, alerts.PriorityHigh, later, 48*time.Hour),
	})
	assert.Empty(t, second.Created)
	assert.Equal(t, 1, second.Deduped)

	active := store.Active(later, "u1")
	require.Len(t, active, 1)
	assert.Equal(t, "a1", active[0].ID, "the existing alert wins, not refreshed")
}

func TestMergeAllowsDifferentTypesAndDays(t *testing.T) {
	store := alerts.NewStore()

	res := store.Merge(now, []alerts.Alert{
		mkAlert("a1", "u1", alerts.TypeHighRisk, alerts.PriorityHigh, now, 48*time.Hour),
		mkAlert("a2", "u1", alerts.TypeNoData, alerts.PriorityMedium, now, 7*24*time.Hour),
		mkAlert("a3", "u2", alerts.TypeHighRisk, alerts.PriorityHigh, now, 48*time.Hour),
	})
	assert.Len(t, res.Created, 3)

	nextDay := now.Add(24 * time.Hour)
	res = store.Merge(nextDay, []alerts.Alert{
		mkAlert("a4", "u1", alerts.TypeHighRisk, alerts.PriorityHigh, nextDay, 48*time.Hour),
	})
	assert.Len(t, res.Created, 1, "new calendar day, new dedup key")
}

func TestActiveSortsPriorityThenRecency(t *testing.T) {
	store := alerts.NewStore()
	store.Merge(now, []alerts.Alert{
		mkAlert("low", "u1", alerts.TypeLowLoad, alerts.PriorityLow, now.Add(-1*time.Hour), 72*time.Hour),
		mkAlert("med-old", "u1", alerts.TypeNoData, alerts.PriorityMedium, now.Add(-3*time.Hour), 7*24*time.Hour),
		mkAlert("high", "u1", alerts.TypeHighRisk, alerts.PriorityHigh, now.Add(-2*time.Hour), 48*time.Hour),
	})
	store.Merge(now.Add(24*time.Hour), []alerts.Alert{
		mkAlert("med-new", "u1", alerts.TypeNoData, alerts.PriorityMedium, now.Add(24*time.Hour), 7*24*time.Hour),
	})

	active := store.Active(now.Add(25*time.Hour), "u1")
	require.Len(t, active, 4)
	assert.Equal(t, "high", active[0].ID)
	assert.Equal(t, "med-new", active[1].ID)
	assert.Equal(t, "med-old", active[2].ID)
	assert.Equal(t, "low", active[3].ID)
}

func TestDismissIsPermanentWithinTheDay(t *testing.T) {
	store := alerts.NewStore()
	store.Merge(now, []alerts.Alert{
		mkAlert("a1", "u1", alerts.TypeHighRisk, alerts.PriorityHigh, now, 48*time.Hour),
	})

	require.True(t, store.Dismiss("a1"))
	require.True(t, store.Dismiss("a1"), "dismiss is idempotent")
	assert.Empty(t, store.Active(now, "u1"))

	// Same rule fires again before the day boundary: still suppressed.
	later := now.Add(30 * time.Minute)
	res := store.Merge(later, []alerts.Alert{
		mkAlert("a2", "u1", alerts.TypeHighRisk, alerts.PriorityHigh, later, 48*time.Hour),
	})
	assert.Empty(t, res.Created)
	assert.Empty(t, store.Active(later, "u1"))
}

func TestExpiredAlertsLeaveActiveView(t *testing.T) {
	store := alerts.NewStore()
	store.Merge(now, []alerts.Alert{
		mkAlert("a1", "u1", alerts.TypeReminder, alerts.PriorityLow, now, 2*time.Hour),
	})

	assert.Len(t, store.Active(now.Add(time.Hour), "u1"), 1)
	assert.Empty(t, store.Active(now.Add(3*time.Hour), "u1"))
}

func TestExpiredSlotCanBeReplacedSameDay(t *testing.T) {
	store := alerts.NewStore()
	store.Merge(now, []alerts.Alert{
		mkAlert("a1", "u1", alerts.TypeReminder, alerts.PriorityLow, now, time.Hour),
	})

	later := now.Add(2 * time.Hour)
	res := store.Merge(later, []alerts.Alert{
		mkAlert("a2", "u1", alerts.TypeReminder, alerts.PriorityLow, later, time.Hour),
	})
	require.Len(t, res.Created, 1)

	active := store.Active(later, "u1")
	require.Len(t, active, 1)
	assert.Equal(t, "a2", active[0].ID)
}

func TestUnreadViewAndReadFlags(t *testing.T) {
	store := alerts.NewStore()
	store.Merge(now, []alerts.Alert{
		mkAlert("a1", "u1", alerts.TypeHighRisk, alerts.PriorityHigh, now, 48*time.Hour),
		mkAlert("a2", "u1", alerts.TypeNoData, alerts.PriorityMedium, now, 7*24*time.Hour),
	})

	assert.Len(t, store.Unread(now, "u1"), 2)

	require.True(t, store.MarkRead("a1"))
	unread := store.Unread(now, "u1")
	require.Len(t, unread, 1)
	assert.Equal(t, "a2", unread[0].ID)

	assert.Equal(t, 1, store.MarkAllRead("u1"))
	assert.Equal(t, 0, store.MarkAllRead("u1"), "second pass flips nothing")
	assert.Empty(t, store.Unread(now, "u1"))
	assert.Len(t, store.Active(now, "u1"), 2, "read alerts stay active")
}

func TestMutationsOnMissingIDs(t *testing.T) {
	store := alerts.NewStore()
	assert.False(t, store.MarkRead("nope"))
	assert.False(t, store.Dismiss("nope"))
	assert.Zero(t, store.MarkAllRead("u1"))
}

func TestPurgeRemovesStaleAlertsOnly(t *testing.T) {
	store := alerts.NewStore()
	old := now.Add(-40 * 24 * time.Hour)
	store.Merge(old, []alerts.Alert{
		mkAlert("stale", "u1", alerts.TypeHighRisk, alerts.PriorityHigh, old, 48*time.Hour),
	})
	store.Merge(now, []alerts.Alert{
		mkAlert("fresh", "u1", alerts.TypeNoData, alerts.PriorityMedium, now, 7*24*time.Hour),
	})

	removed := store.Purge(now, 30*24*time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	active := store.Active(now, "u1")
	require.Len(t, active, 1)
	assert.Equal(t, "fresh", active[0].ID)
}
