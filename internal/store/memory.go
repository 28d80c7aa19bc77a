package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend is an in-process Backend. Setting FailWrites makes every
// write fail with that error, leaving stored values untouched. FailReads
// makes Get fail for the listed keys.
type MemoryBackend struct {
	mu         sync.RWMutex
	values     map[string][]byte
	FailWrites error
	FailReads  map[string]error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FailReads[key]; err != nil {
		return nil, false, err
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryBackend) Set(ctx context.Context, key string, value []byte) error {
	return m.SetAll(ctx, map[string][]byte{key: value})
}

func (m *MemoryBackend) SetAll(_ context.Context, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	for k, v := range values {
		m.values[k] = append([]byte(nil), v...)
	}
	return nil
}

func (m *MemoryBackend) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryBackend) Close() error {
	return nil
}

var _ Backend = (*MemoryBackend)(nil)
