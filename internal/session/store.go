package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrNotFound is returned for an unknown or expired session ID.
var ErrNotFound = errors.New("session not found")

// Store keeps sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	active   prometheus.Gauge
}

// NewStore creates an empty store. active may be nil.
func NewStore(active prometheus.Gauge) *Store {
	return &Store{sessions: make(map[string]*Session), active: active}
}

// Create adds a new empty session and returns a copy of it.
func (st *Store) Create() *Session {
	s := New()
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.setGauge()
	st.mu.Unlock()
	return s.clone()
}

// Get returns a copy of the session.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.clone(), nil
}

// Update applies fn to the stored session under the write lock and returns a
// copy of the result. If fn fails the session is left unchanged.
func (st *Store) Update(id string, fn func(*Session) error) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	work := s.clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	st.sessions[id] = work
	return work.clone(), nil
}

// Touch marks the session as active now so the sweeper keeps it.
func (st *Store) Touch(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.touch()
	return nil
}

// Len returns the number of stored sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep deletes sessions idle for longer than ttl and returns how many were
// removed.
func (st *Store) Sweep(ttl time.Duration) int {
	cutoff := domain.Now().Add(-ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	st.setGauge()
	return removed
}

func (st *Store) setGauge() {
	if st.active != nil {
		st.active.Set(float64(len(st.sessions)))
	}
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (st *Store) RunSweeper(ctx context.Context, interval, ttl time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(ttl); n > 0 {
				logger.Info("expired sessions removed", "count", n, "remaining", st.Len())
			}
		}
	}
}
