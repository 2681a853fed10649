package port

import (
	"context"

	"github.com/glam-abaya/cartstore/internal/core/domain"
)

type AnalyticsRepository interface {
	// RecordEvent inserts a single product_analytics row
	RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error
}
