package storage

import (
	"context"
	"sync"
)

// InMemStorage keeps the snapshot in process memory. Nothing survives a restart.
type InMemStorage struct {
	mu    sync.Mutex
	data  []byte
	found bool
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{}
}

func (s *InMemStorage) Load(_ context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.found {
		return nil, false, nil
	}
	return append([]byte(nil), s.data...), true, nil
}

func (s *InMemStorage) Save(_ context.Context, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), snapshot...)
	s.found = true
	return nil
}

func (s *InMemStorage) Close() error {
	return nil
}
