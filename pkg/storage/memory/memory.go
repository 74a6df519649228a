package memory

import (
	"context"
	"sync"

	"github.com/c14220110/mediflow-backend/pkg/storage"
)

// Store keeps payloads in a map. Used by tests and by `serve --ephemeral`.
type Store struct {
	mu   sync.Mutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Save(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(payload))
	copy(v, payload)
	s.data[key] = v
	return nil
}

func (s *Store) Close() error { return nil }
