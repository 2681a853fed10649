package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glam-abaya/cartstore/internal/core/domain"
	"github.com/glam-abaya/cartstore/internal/port"
)

var (
	ErrDispatcherClosed = errors.New("analytics dispatcher closed")
	ErrQueueFull        = errors.New("analytics queue full")
)

const defaultRecordTimeout = 5 * time.Second

// AnalyticsDispatcher carries analytics events from cart mutations to the
// repository on its own workers. Recording is attempted once; failures are
// logged only.
type AnalyticsDispatcher struct {
	repo    port.AnalyticsRepository
	queue   chan domain.AnalyticsEvent
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewAnalyticsDispatcher(repo port.AnalyticsRepository, queueSize int, logger *zap.Logger) *AnalyticsDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsDispatcher{
		repo:    repo,
		queue:   make(chan domain.AnalyticsEvent, queueSize),
		timeout: defaultRecordTimeout,
		logger:  logger,
	}
}

// Emit enqueues event without blocking. It stamps ID and CreatedAt when unset.
func (d *AnalyticsDispatcher) Emit(event domain.AnalyticsEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches workerCount workers draining the queue.
func (d *AnalyticsDispatcher) Start(workerCount int) {
	for i := 0; i < workerCount; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.workerLoop(id)
		}(i)
	}
}

func (d *AnalyticsDispatcher) workerLoop(id int) {
	for event := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)

		if err := d.repo.RecordEvent(ctx, event); err != nil {
			d.logger.Warn("failed to record analytics event",
				zap.Int("worker", id),
				zap.String("event_id", event.ID),
				zap.String("product_id", string(event.ProductID)),
				zap.String("event_type", string(event.EventType)),
				zap.Error(err),
			)
		} else {
			d.logger.Debug("recorded analytics event",
				zap.Int("worker", id),
				zap.String("event_id", event.ID),
			)
		}

		cancel()
	}
}

// Pending reports queued events not yet picked up by a worker.
func (d *AnalyticsDispatcher) Pending() int {
	return len(d.queue)
}

// Close stops accepting events and waits for the workers to drain the queue.
func (d *AnalyticsDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
