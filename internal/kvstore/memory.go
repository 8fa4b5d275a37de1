package kvstore

import (
	"bytes"
	"context"
	"sync"
)

// Memory is a process-local store.  It is the default backend and the one
// tests run against.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte{}, v...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte{}, value...)
	return nil
}

func (m *Memory) CompareAndSwap(_ context.Context, key string, prev, next []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.data[key]
	if !matches(cur, ok, prev) {
		return false, nil
	}
	m.data[key] = append([]byte{}, next...)
	return true, nil
}

// matches reports whether the stored state (cur, exists) satisfies prev.
func matches(cur []byte, exists bool, prev []byte) bool {
	if prev == nil {
		return !exists
	}
	return exists && bytes.Equal(cur, prev)
}
