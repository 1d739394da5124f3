package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps session bags in process memory. It is the default
// backend: nothing survives a restart, which is the same security
// property tab-scoped storage gave the original console.
type MemoryStore struct {
	ttl      time.Duration
	mu       sync.Mutex
	sessions map[string]*memorySession
}

type memorySession struct {
	values   map[string]string
	lastSeen time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store whose idle sessions are swept after
// ttl. A non-positive ttl disables sweeping.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*memorySession),
	}
}

func (s *MemoryStore) Set(_ context.Context, sid, key, value string) error {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sid]
	if !ok {
		entry = &memorySession{values: make(map[string]string), lastSeen: now}
		s.sessions[sid] = entry
		s.sweepLocked(now)
	}
	entry.values[key] = value
	entry.lastSeen = now
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sid, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sid]
	if !ok {
		return "", nil
	}
	entry.lastSeen = time.Now()
	return entry.values[key], nil
}

func (s *MemoryStore) Remove(_ context.Context, sid, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.sessions[sid]; ok {
		delete(entry.values, key)
		entry.lastSeen = time.Now()
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sid)
	return nil
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for sid, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.sessions, sid)
		}
	}
}
