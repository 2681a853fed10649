package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/glam-abaya/cartstore/internal/core/domain"
)

const pgForeignKeyViolation = "23503"

// PostgresAdapter writes to the storefront's own product_analytics table.
type PostgresAdapter struct {
	db *sql.DB
}

func NewPostgresAdapter(db *sql.DB) *PostgresAdapter {
	return &PostgresAdapter{db: db}
}

func (p *PostgresAdapter) RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO product_analytics (id, product_id, event_type, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, string(event.ProductID), string(event.EventType), nullString(event.UserID), event.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("insert product_analytics %s: %w", event.ProductID, ErrUnknownProduct)
		}
		return fmt.Errorf("insert product_analytics: %w", err)
	}
	return nil
}

func (p *PostgresAdapter) CountEvents(ctx context.Context, productID domain.ProductID, eventType domain.EventType) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM product_analytics
		WHERE product_id = $1 AND event_type = $2`,
		string(productID), string(eventType),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count product_analytics: %w", err)
	}
	return count, nil
}

func (p *PostgresAdapter) Close() error {
	return p.db.Close()
}
