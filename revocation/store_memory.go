package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps both registries in process memory. State is lost on
// restart.
type MemoryStore struct {
	mu      sync.RWMutex
	blocked map[string]time.Time // id -> token exp
	users   map[string]time.Time // user id -> invalidated at

	// markerTTL caps how long a user marker is kept, 0 keeps it forever.
	markerTTL time.Duration
	now       func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMarkerTTL drops user markers ttl after they were written. Set it to at
// least the longest token lifetime.
func WithMarkerTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.markerTTL = ttl
	}
}

// WithMemoryClock replaces time.Now.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		blocked: make(map[string]time.Time),
		users:   make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) BlockToken(_ context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked[id] = expiresAt
	return nil
}

func (s *MemoryStore) IsTokenBlocked(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, ok := s.blocked[id]
	if !ok {
		return false, nil
	}
	// an expired entry is dead whether or not Sweep has run
	return s.now().Before(exp), nil
}

func (s *MemoryStore) InvalidateUser(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = at
	return nil
}

func (s *MemoryStore) UserInvalidatedAt(_ context.Context, userID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at, ok := s.users[userID]
	if !ok || s.markerExpired(at, s.now()) {
		return time.Time{}, false, nil
	}
	return at, true, nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var stats Stats
	for _, exp := range s.blocked {
		if now.Before(exp) {
			stats.BlockedTokensCount++
		}
	}
	for _, at := range s.users {
		if !s.markerExpired(at, now) {
			stats.InvalidatedUsersCount++
		}
	}
	return stats, nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, exp := range s.blocked {
		if !now.Before(exp) {
			delete(s.blocked, id)
			removed++
		}
	}
	for id, at := range s.users {
		if s.markerExpired(at, now) {
			delete(s.users, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.blocked)
	clear(s.users)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) markerExpired(at, now time.Time) bool {
	return s.markerTTL > 0 && !now.Before(at.Add(s.markerTTL))
}
