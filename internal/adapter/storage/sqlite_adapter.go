package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glam-abaya/cartstore/internal/port"
)

type SQLiteAdapter struct {
	db *sql.DB
}

func NewSQLiteAdapter(dataSourceName string) (*SQLiteAdapter, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// :memory: databases exist per connection
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS cart_slots (
		slot_key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cart_slots table: %w", err)
	}

	return &SQLiteAdapter{db: db}, nil
}

func (a *SQLiteAdapter) Slot(key string) port.CartSlot {
	return &sqliteSlot{db: a.db, key: key}
}

func (a *SQLiteAdapter) Close() error {
	return a.db.Close()
}

type sqliteSlot struct {
	db  *sql.DB
	key string
}

func (s *sqliteSlot) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM cart_slots WHERE slot_key = ?`, s.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query slot %s: %w", s.key, err)
	}
	return data, nil
}

func (s *sqliteSlot) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_slots (slot_key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.key, data, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert slot %s: %w", s.key, err)
	}
	return nil
}
