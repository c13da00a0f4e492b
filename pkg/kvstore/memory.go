package kvstore

import (
	"context"
	"sync"
)

var _ Store = (*Memory)(nil)

// Memory keeps namespaces in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, namespace string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Save(_ context.Context, namespace string, value []byte) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	m.mu.Lock()
	m.data[namespace] = buf
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, namespace string) error {
	m.mu.Lock()
	delete(m.data, namespace)
	m.mu.Unlock()
	return nil
}
