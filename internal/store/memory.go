package store

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemory returns an in-process KV store. It is the default backend and the
// one tests use.
func NewMemory() KV {
	return &memoryStore{data: make(map[string]map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, kind, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[kind][id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *memoryStore) Put(_ context.Context, kind, id string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.data[kind]
	if !ok {
		m = make(map[string][]byte)
		s.data[kind] = m
	}
	v := make([]byte, len(value))
	copy(v, value)
	m[id] = v
	return nil
}

func (s *memoryStore) Delete(_ context.Context, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[kind], id)
	return nil
}

func (s *memoryStore) List(_ context.Context, kind string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.data[kind]
	out := make([][]byte, 0, len(m))
	for _, v := range m {
		c := make([]byte, len(v))
		copy(c, v)
		out = append(out, c)
	}
	return out, nil
}

func (s *memoryStore) Close() error { return nil }
