package session

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-process Store. It is the default for
// single-process dashboards and for tests; BunStore and RedisStore cover
// on-disk and shared deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	data SessionData
	set  bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the current session, or the zero SessionData when none is set.
func (s *MemoryStore) Get(_ context.Context) (SessionData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return SessionData{}, nil
	}
	return s.copyLocked(), nil
}

// Set replaces the stored session. Last write wins.
func (s *MemoryStore) Set(_ context.Context, data SessionData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data.User != nil {
		user := *data.User
		if data.User.Profile != nil {
			profile := *data.User.Profile
			user.Profile = &profile
		}
		data.User = &user
	}
	s.data = data
	s.set = true
	return nil
}

// Clear removes the stored session. It is a no-op on an empty store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = SessionData{}
	s.set = false
	return nil
}

func (s *MemoryStore) copyLocked() SessionData {
	out := s.data
	if s.data.User != nil {
		user := *s.data.User
		if s.data.User.Profile != nil {
			profile := *s.data.User.Profile
			user.Profile = &profile
		}
		out.User = &user
	}
	return out
}
