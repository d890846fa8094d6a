// Package lockout tracks failed login attempts per username and temporarily
// locks accounts that accumulate too many strikes inside a rolling window.
// This is a login-side brake only: it does not revoke tokens that were
// already issued.
package lockout

import (
	"context"
	"sync"
	"time"
)

type Store interface {
	// Locked reports whether key is currently locked out.
	Locked(ctx context.Context, key string) (bool, error)
	// Strike records one failed attempt and reports whether the strike
	// crossed the threshold and locked the key.
	Strike(ctx context.Context, key string) (bool, error)
	// Clear forgets accumulated strikes, typically after a successful login.
	Clear(ctx context.Context, key string) error
}

type entry struct {
	strikes     int
	windowStart time.Time
	lockedUntil time.Time
}

// MemoryStore is the in-process fallback used when no Redis address is
// configured, and in tests. State is per-instance, so in a multi-replica
// deployment each replica counts strikes independently.
type MemoryStore struct {
	max      int
	window   time.Duration
	duration time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

func NewMemoryStore(max int, window time.Duration, duration time.Duration) *MemoryStore {
	return &MemoryStore{
		max:      max,
		window:   window,
		duration: duration,
		now:      time.Now,
		entries:  map[string]*entry{},
	}
}

func (s *MemoryStore) Locked(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false, nil
	}

	if !e.lockedUntil.IsZero() && s.now().Before(e.lockedUntil) {
		return true, nil
	}

	return false, nil
}

func (s *MemoryStore) Strike(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	e, ok := s.entries[key]
	if !ok || now.Sub(e.windowStart) > s.window {
		e = &entry{windowStart: now}
		s.entries[key] = e
	}

	e.strikes++
	if e.strikes >= s.max {
		e.lockedUntil = now.Add(s.duration)
		e.strikes = 0
		return true, nil
	}

	return false, nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) pruneLocked(now time.Time) {
	if len(s.entries) < 1000 {
		return
	}

	for key, e := range s.entries {
		expired := now.Sub(e.windowStart) > s.window
		unlocked := e.lockedUntil.IsZero() || now.After(e.lockedUntil)
		if expired && unlocked {
			delete(s.entries, key)
		}
	}
}
