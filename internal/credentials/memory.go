package credentials

import (
	"context"
	"sync"
)

// MemoryStore keeps secrets in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[Tag]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[Tag]string)}
}

func (m *MemoryStore) Get(ctx context.Context, tag Tag) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.secrets[tag]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(ctx context.Context, tag Tag, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.secrets[tag] = value
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, tag Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.secrets, tag)
	return nil
}
