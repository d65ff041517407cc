package cache

import (
	"encoding/json"
	"errors"
	"sync"
)

// Common cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// Store is the persistence contract used by the fetch layer.
type Store interface {
	// Get returns ErrCacheNotFound or ErrCacheExpired when there is no
	// servable entry for key.
	Get(key string) (*Entry, error)
	Set(key string, data json.RawMessage) error
	Delete(key string) error
	Clear() error
}

// MemoryStore is an in-process Store. Safe for concurrent use.
type MemoryStore struct {
	ttlSeconds int

	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(ttlSeconds int) *MemoryStore {
	return &MemoryStore{
		ttlSeconds: ttlSeconds,
		entries:    make(map[string]*Entry),
	}
}

// Get retrieves an entry by key.
func (s *MemoryStore) Get(key string) (*Entry, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCacheNotFound
	}
	if entry.IsExpired() {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}

	cp := *entry
	return &cp, nil
}

// Set stores data under key, replacing any existing entry.
func (s *MemoryStore) Set(key string, data json.RawMessage) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = NewEntry(key, data, s.ttlSeconds)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Clear removes every entry.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
	return nil
}
