package memory

import (
	"context"
	"sync"
)

// KVStore keeps progress values in a map. Writes of several keys are applied
// under one lock.
type KVStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewKVStore() *KVStore {
	return &KVStore{values: make(map[string]string)}
}

func (s *KVStore) Get(_ context.Context, keys ...string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *KVStore) SetAll(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

// Put writes a single raw value. Useful for seeding.
func (s *KVStore) Put(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}
