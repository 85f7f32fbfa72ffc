package session

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	current  *Session
	remember bool
}

// NewMemoryStore builds an in-memory session slot for dev mode and tests.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) Save(_ context.Context, sess Session, remember bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &sess
	s.remember = remember
	return nil
}

func (s *memoryStore) Load(_ context.Context) (Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false, nil
	}
	return *s.current, true, nil
}

func (s *memoryStore) Remember(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remember, nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.remember = false
	return nil
}
