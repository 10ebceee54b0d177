// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Live game sessions are process-local: each holds a running loop and
// pending timers, so there is nothing meaningful to persist.
//
// Characteristics:
//   - Stores *session.Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Removing a session (Delete or Sweep) closes it.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/session"
)

// ErrNotFound is returned by Get and Delete for unknown IDs.
var ErrNotFound = errors.New("not found")

// Store defines the registry of live game sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *session.Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Delete closes and removes a session.
	Delete(ctx context.Context, id string) error

	// Sweep closes and removes sessions idle for longer than idle and
	// returns how many were removed.
	Sweep(ctx context.Context, idle time.Duration) int

	// OwnedBy returns the live sessions of owner, least recently used first.
	OwnedBy(ctx context.Context, owner session.Owner) []*session.Session

	// Len returns the number of live sessions.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex                // guards sessions map
	sessions map[string]*session.Session // keyed by Session.ID
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*session.Session), now: time.Now}
}

// Save adds or updates the session in the map. A replaced session is closed.
func (m *memory) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	old, ok := m.sessions[s.ID]
	m.sessions[s.ID] = s
	m.mu.Unlock()
	if ok && old != s {
		old.Close()
	}
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// Delete removes and closes a session.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

// Sweep removes idle sessions. Sessions are closed outside the lock.
func (m *memory) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	var stale []*session.Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// OwnedBy scans the map for owner's sessions.
func (m *memory) OwnedBy(ctx context.Context, owner session.Owner) []*session.Session {
	m.mu.RLock()
	var out []*session.Session
	for _, s := range m.sessions {
		if s.Owner == owner {
			out = append(out, s)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen().Before(out[j].LastSeen()) })
	return out
}

// Len returns the number of sessions.
func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Janitor sweeps st every interval until ctx is done.
func Janitor(ctx context.Context, st Store, every, idle time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Sweep(ctx, idle); n > 0 {
				log.Info().Int("swept", n).Int("live", st.Len()).Msg("evicted idle games")
			}
		}
	}
}
