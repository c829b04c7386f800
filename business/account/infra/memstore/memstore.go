// Package memstore keeps the persisted state in memory.
package memstore

import (
	"context"
	"slices"
	"sync"
)

// Store is an in-process Persister.
type Store struct {
	mu   sync.Mutex
	data []byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Load implements app.Persister.
func (s *Store) Load(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data), nil
}

// Save implements app.Persister.
func (s *Store) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = slices.Clone(data)
	return nil
}
