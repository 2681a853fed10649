package handler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/glam-abaya/cartstore/internal/adapter/storage"
	"github.com/glam-abaya/cartstore/internal/core/domain"
	"github.com/glam-abaya/cartstore/internal/core/service"
	"github.com/glam-abaya/cartstore/internal/port"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []domain.AnalyticsEvent
}

func (e *recordingEmitter) Emit(event domain.AnalyticsEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) Events() []domain.AnalyticsEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.AnalyticsEvent(nil), e.events...)
}

func newTestRegistry(t *testing.T) (*service.Registry, *storage.MemoryAdapter, *recordingEmitter) {
	t.Helper()
	slots := storage.NewMemoryAdapter()
	emitter := &recordingEmitter{}
	registry := service.NewRegistry(slots,
		service.WithLogger(zap.NewNop()),
		service.WithEmitter(emitter),
		service.WithIdentity(ContextIdentity{}),
	)
	return registry, slots, emitter
}

// unreadableSlots fails every read, like a Redis that is down.
type unreadableSlots struct{}

func (unreadableSlots) Slot(string) port.CartSlot { return unreadableSlot{} }

type unreadableSlot struct{}

func (unreadableSlot) Load(context.Context) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (unreadableSlot) Save(context.Context, []byte) error {
	return errors.New("connection refused")
}
