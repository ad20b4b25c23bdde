package alerts

import (
	"sort"
	"sync"
	"time"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/load"
)

// dedupKey allows at most one alert of a given type per user per calendar
// day, no matter how many times the scheduler runs that day.
type dedupKey struct {
	userID string
	typ    Type
	day    time.Time
}

func keyOf(a *Alert) dedupKey {
	return dedupKey{userID: a.UserID, typ: a.Type, day: load.Day(a.CreatedAt)}
}

// MergeResult summarizes one merge step.
type MergeResult struct {
	Created []Alert // alerts that survived dedup, in input order
	Deduped int     // alerts dropped because an active same-key alert exists
}

// Store is a thread-safe in-memory alert collection.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*Alert
	index map[dedupKey]string // dedup key -> alert ID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byID:  make(map[string]*Alert),
		index: make(map[dedupKey]string),
	}
}

// Merge folds a batch of freshly generated alerts into the store as a single
// atomic step. A new alert whose key collides with an existing non-dismissed,
// non-expired alert is discarded — the existing one wins and is not
// refreshed. A dismissed alert also blocks re-creation under the same key, so
// a dismissed warning never reappears within the same day.
func (s *Store) Merge(now time.Time, batch []Alert) MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result MergeResult
	for _, a := range batch {
		key := keyOf(&a)
		if id, exists := s.index[key]; exists {
			existing := s.byID[id]
			if existing.IsDismissed || !existing.Expired(now) {
				result.Deduped++
				continue
			}
			// Same-key alert expired without dismissal: replace it.
			delete(s.byID, id)
		}
		stored := a
		s.byID[stored.ID] = &stored
		s.index[key] = stored.ID
		result.Created = append(result.Created, stored)
	}
	return result
}

// Active returns the non-dismissed, non-expired alerts for a user, sorted by
// priority descending then creation time descending. An empty userID returns
// alerts for every user.
func (s *Store) Active(now time.Time, userID string) []Alert {
	return s.view(now, userID, false)
}

// Unread returns the active alerts the user has not read yet.
func (s *Store) Unread(now time.Time, userID string) []Alert {
	return s.view(now, userID, true)
}

func (s *Store) view(now time.Time, userID string, unreadOnly bool) []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Alert
	for _, a := range s.byID {
		if userID != "" && a.UserID != userID {
			continue
		}
		if !a.Active(now) {
			continue
		}
		if unreadOnly && a.IsRead {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if rank[out[i].Priority] != rank[out[j].Priority] {
			return rank[out[i].Priority] > rank[out[j].Priority]
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// MarkRead flags an alert as read. Idempotent; reports whether the alert
// exists.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return false
	}
	a.IsRead = true
	return true
}

// Dismiss removes an alert from the active view permanently. Idempotent;
// reports whether the alert exists.
func (s *Store) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return false
	}
	a.IsDismissed = true
	return true
}

// MarkAllRead flags every alert of a user as read and returns how many flags
// actually flipped.
func (s *Store) MarkAllRead(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	flipped := 0
	for _, a := range s.byID {
		if a.UserID == userID && !a.IsRead {
			a.IsRead = true
			flipped++
		}
	}
	return flipped
}

// Purge hard-removes alerts that have been expired or dismissed for longer
// than keepFor. Run by the maintenance ticker; the active view is unaffected
// since purged alerts were already soft-filtered.
func (s *Store) Purge(now time.Time, keepFor time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-keepFor)
	removed := 0
	for id, a := range s.byID {
		stale := a.IsDismissed && a.CreatedAt.Before(cutoff)
		if !stale && a.ExpiresAt != nil {
			stale = a.ExpiresAt.Before(cutoff)
		}
		if stale {
			delete(s.byID, id)
			if s.index[keyOf(a)] == id {
				delete(s.index, keyOf(a))
			}
			removed++
		}
	}
	return removed
}

// Len returns the total number of stored alerts, including inactive ones.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
