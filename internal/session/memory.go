package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. Sessions live for the process
// lifetime: no eviction, no TTL, lost on restart. Suitable for a single
// instance; a durable deployment uses RedisStore behind the same interface.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Get returns the session for id, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// GetOrCreate returns the session for id, creating one in StateNew if absent.
func (s *MemoryStore) GetOrCreate(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	sess := newSession(id, s.now())
	s.sessions[id] = sess
	return sess, nil
}

// Update applies patch to the session for id, creating it first if absent.
func (s *MemoryStore) Update(_ context.Context, id string, patch Patch) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = newSession(id, s.now())
	}
	applyPatch(&sess, patch, s.now())
	s.sessions[id] = sess
	return sess, nil
}
