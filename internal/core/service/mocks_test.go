package service

import (
	"context"
	"sync"

	"github.com/glam-abaya/cartstore/internal/core/domain"
	"github.com/glam-abaya/cartstore/internal/port"
)

// Mock CartSlot
type mockSlot struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (m *mockSlot) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *mockSlot) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *mockSlot) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Mock SlotProvider
type mockSlotProvider struct {
	mu    sync.Mutex
	slots map[string]*mockSlot
}

func newMockSlotProvider() *mockSlotProvider {
	return &mockSlotProvider{slots: make(map[string]*mockSlot)}
}

func (m *mockSlotProvider) Slot(key string) port.CartSlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[key]
	if !ok {
		slot = &mockSlot{}
		m.slots[key] = slot
	}
	return slot
}

// Mock Emitter
type mockEmitter struct {
	mu     sync.Mutex
	events []domain.AnalyticsEvent
	err    error
}

func (m *mockEmitter) Emit(event domain.AnalyticsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockEmitter) recorded() []domain.AnalyticsEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AnalyticsEvent(nil), m.events...)
}

// Mock AnalyticsRepository
type mockAnalyticsRepo struct {
	mu     sync.Mutex
	events []domain.AnalyticsEvent
	err    error
}

func (m *mockAnalyticsRepo) RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockAnalyticsRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type staticIdentity string

func (s staticIdentity) UserID(context.Context) string { return string(s) }
