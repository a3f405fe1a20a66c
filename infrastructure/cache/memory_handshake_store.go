package cache

import (
	"context"
	"sync"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"
)

type memoryEntry struct {
	state     model.HandshakeState
	expiresAt time.Time
}

type memoryHandshakeStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryHandshakeStore is the in-process handshake store used when Redis is not configured.
func NewMemoryHandshakeStore(ttl time.Duration) repository.IHandshakeStore {
	return newMemoryHandshakeStore(ttl, time.Now)
}

func newMemoryHandshakeStore(ttl time.Duration, now func() time.Time) *memoryHandshakeStore {
	return &memoryHandshakeStore{ttl: ttl, now: now, entries: map[string]memoryEntry{}}
}

func (s *memoryHandshakeStore) Put(_ context.Context, state model.HandshakeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := handshakeKey(state.UserID, state.Platform)
	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return model.ErrHandshakeAlreadyInFlight
	}
	s.entries[key] = memoryEntry{state: state, expiresAt: now.Add(s.ttl)}
	s.sweepLocked(now)
	return nil
}

func (s *memoryHandshakeStore) Take(_ context.Context, userID string, platform model.Platform) (*model.HandshakeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := handshakeKey(userID, platform)
	e, ok := s.entries[key]
	if !ok {
		return nil, model.ErrNoPendingHandshake
	}
	delete(s.entries, key)
	if !s.now().Before(e.expiresAt) {
		return nil, model.ErrNoPendingHandshake
	}
	state := e.state
	return &state, nil
}

func (s *memoryHandshakeStore) sweepLocked(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
