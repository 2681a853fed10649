package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/glam-abaya/cartstore/internal/core/domain"
)

// ErrUnknownProduct reports an analytics row rejected by the products foreign key.
var ErrUnknownProduct = errors.New("unknown product")

const mysqlForeignKeyViolation = 1452

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO product_analytics (id, product_id, event_type, user_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		event.ID, string(event.ProductID), string(event.EventType), nullString(event.UserID), event.CreatedAt,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlForeignKeyViolation {
			return fmt.Errorf("insert product_analytics %s: %w", event.ProductID, ErrUnknownProduct)
		}
		return fmt.Errorf("insert product_analytics: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) CountEvents(ctx context.Context, productID domain.ProductID, eventType domain.EventType) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM product_analytics
		WHERE product_id = ? AND event_type = ?`,
		string(productID), string(eventType),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count product_analytics: %w", err)
	}
	return count, nil
}

func (m *MySQLAdapter) Close() error {
	return m.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
