// Package memory provides a process-local storage.KeyValue.
// It backs session-scoped state, which is dropped when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/mmynk/slidemaker/internal/storage"
)

var _ storage.KeyValue = (*Store)(nil)

// Store is a map guarded by a mutex. The zero value is not usable; call New.
type Store struct {
	mu   sync.Mutex
	data map[string]storage.Entry
}

// New creates an empty Store.
func New() *Store {
	return &Store{data: make(map[string]storage.Entry)}
}

func (s *Store) Get(_ context.Context, key string) (storage.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return storage.Entry{}, storage.ErrKeyNotFound
	}
	return e, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = storage.Entry{Value: value, Version: s.data[key].Version + 1}
	return nil
}

func (s *Store) CompareAndSwap(_ context.Context, key, value string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[key].Version != version {
		return storage.ErrVersionConflict
	}
	s.data[key] = storage.Entry{Value: value, Version: version + 1}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
