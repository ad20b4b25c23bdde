// Package snapshot holds the read models published by the last completed
// pipeline run: per-athlete ratio series and per-team aggregates. The whole
// snapshot is replaced atomically, so readers never observe a half-finished
// run.
package snapshot

import (
	"sync"
	"time"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/acwr"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/source"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/team"
)

// User is the derived state for one athlete.
type User struct {
	Member source.Member `json:"member"`
	Series []acwr.Point  `json:"series"`
	Band   acwr.Band     `json:"band"`   // classification of the latest mature ratio
	Mature bool          `json:"mature"` // history spans the minimum alerting window
}

// Snapshot is the full output of one pipeline run.
type Snapshot struct {
	TakenAt time.Time
	Users   map[string]User
	Teams   map[string][]team.Point
}

// Store is a thread-safe holder of the current snapshot.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
}

// NewStore creates an empty store. Readers see no data until the first
// pipeline run publishes.
func NewStore() *Store {
	return &Store{}
}

// Replace swaps in the new snapshot.
func (s *Store) Replace(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snap
}

// Current returns the latest snapshot, or nil before the first run.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// User returns one athlete's derived state from the latest snapshot.
func (s *Store) User(userID string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return User{}, false
	}
	u, ok := s.current.Users[userID]
	return u, ok
}

// Team returns one team's aggregate series from the latest snapshot.
func (s *Store) Team(teamID string) ([]team.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	points, ok := s.current.Teams[teamID]
	return points, ok
}
