// Package session reads the authenticated user from a session key-value store.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// MemoryStore is an in-process port.SessionStore
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates an empty session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

func (s *MemoryStore) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

func (s *MemoryStore) SetItem(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

func (s *MemoryStore) RemoveItem(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// CurrentUser decodes the user stored under entity.SessionUserKey.
// The store is read on every call.
func CurrentUser(store port.SessionStore) (*entity.User, error) {
	if store == nil {
		return nil, entity.ErrNoSessionUser
	}

	raw, ok := store.GetItem(entity.SessionUserKey)
	if !ok || raw == "" {
		return nil, entity.ErrNoSessionUser
	}

	var user entity.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to decode session user: %w", err)
	}
	return &user, nil
}

// SetUser serializes user into the store
func SetUser(store port.SessionStore, user entity.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}
	store.SetItem(entity.SessionUserKey, string(data))
	return nil
}

// NewUserSession returns a memory store already holding user
func NewUserSession(user entity.User) *MemoryStore {
	store := NewMemoryStore()
	_ = SetUser(store, user)
	return store
}
