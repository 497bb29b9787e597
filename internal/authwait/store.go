// Package authwait tracks, per user, the most recent URL that failed
// because the target site demanded session identity. One long-lived
// store owns the map; components receive it by reference instead of
// sharing a hidden global.
package authwait

import (
	"sync"
	"time"
)

// Entry is a parked request awaiting fresh credentials.
type Entry struct {
	URL      string
	ParkedAt time.Time
}

// Store maps user identity to at most one pending entry. A newer
// failure for the same user replaces the older one.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
}

// NewStore creates a store. Entries older than ttl are dropped during
// sweeps; a zero ttl disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]Entry),
		ttl:     ttl,
	}
}

// Park records the URL a user's acquisition failed on.
func (s *Store) Park(userID, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = Entry{URL: url, ParkedAt: time.Now()}
}

// Take consumes and removes the pending entry for one user.
func (s *Store) Take(userID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return Entry{}, false
	}
	delete(s.entries, userID)
	if s.expired(e) {
		return Entry{}, false
	}
	return e, true
}

// Drain consumes every pending entry, returning them keyed by user.
// Called when fresh credentials are installed so each parked request
// gets its automatic retry.
func (s *Store) Drain() map[string]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Entry, len(s.entries))
	for user, e := range s.entries {
		if !s.expired(e) {
			out[user] = e
		}
	}
	s.entries = make(map[string]Entry)
	return out
}

// Len reports the number of parked entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops expired entries.
func (s *Store) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for user, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, user)
		}
	}
}

func (s *Store) expired(e Entry) bool {
	return s.ttl > 0 && time.Since(e.ParkedAt) > s.ttl
}
