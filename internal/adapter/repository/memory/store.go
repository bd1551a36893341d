package memory

import (
	"context"
	"sync"

	"github.com/simaogato/goalfolio-backend/internal/domain"
)

// Store keeps records in-memory. Useful for tests or ephemeral runs where persistence is not required.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
}

var _ domain.ClosableStore = (*Store)(nil)

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{records: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.records[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(v), nil
}

// Set stores a copy of value so later mutations by the caller are not observed
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = clone(value)
	return nil
}

// Len returns the number of stored keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op
func (s *Store) Close() error { return nil }

func clone(v []byte) []byte {
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp
}
