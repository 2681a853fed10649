package storage

import (
	"context"
	"sync"

	"github.com/glam-abaya/cartstore/internal/port"
)

type MemoryAdapter struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{slots: make(map[string][]byte)}
}

func (m *MemoryAdapter) Slot(key string) port.CartSlot {
	return &memorySlot{adapter: m, key: key}
}

func (m *MemoryAdapter) Close() error { return nil }

type memorySlot struct {
	adapter *MemoryAdapter
	key     string
}

func (s *memorySlot) Load(ctx context.Context) ([]byte, error) {
	s.adapter.mu.RLock()
	defer s.adapter.mu.RUnlock()

	data, ok := s.adapter.slots[s.key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (s *memorySlot) Save(ctx context.Context, data []byte) error {
	s.adapter.mu.Lock()
	defer s.adapter.mu.Unlock()

	s.adapter.slots[s.key] = append([]byte(nil), data...)
	return nil
}
