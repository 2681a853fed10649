package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/glam-abaya/cartstore/internal/core/domain"
)

// LogAdapter records analytics events to the service log only.
type LogAdapter struct {
	logger *zap.Logger
}

func NewLogAdapter(logger *zap.Logger) *LogAdapter {
	return &LogAdapter{logger: logger}
}

func (l *LogAdapter) RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	l.logger.Info("product analytics event",
		zap.String("event_id", event.ID),
		zap.String("product_id", string(event.ProductID)),
		zap.String("event_type", string(event.EventType)),
		zap.String("user_id", event.UserID),
		zap.Time("created_at", event.CreatedAt),
	)
	return nil
}

func (l *LogAdapter) Close() error { return nil }
