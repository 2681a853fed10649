package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/glam-abaya/cartstore/internal/config"
	"github.com/glam-abaya/cartstore/internal/core/domain"
	"github.com/glam-abaya/cartstore/internal/port"
)

var (
	ErrUnknownStorageType   = errors.New("unknown storage type")
	ErrUnknownAnalyticsSink = errors.New("unknown analytics sink")
)

type SlotBackend interface {
	port.SlotProvider
	Close() error
}

type AnalyticsBackend interface {
	port.AnalyticsRepository
	Close() error
}

// EventCounter is implemented by the SQL sinks, which can read back what
// they recorded.
type EventCounter interface {
	CountEvents(ctx context.Context, productID domain.ProductID, eventType domain.EventType) (int, error)
}

var (
	_ EventCounter = (*MySQLAdapter)(nil)
	_ EventCounter = (*PostgresAdapter)(nil)
)

// NewSlotBackend opens the durable slot backend selected by cfg.StorageType.
func NewSlotBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (SlotBackend, error) {
	var backend SlotBackend
	fields := []zap.Field{zap.String("storage_type", cfg.StorageType)}

	switch cfg.StorageType {
	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		fields = append(fields, zap.String("redis_addr", cfg.RedisAddr), zap.Duration("cart_ttl", cfg.CartTTL))
		backend = NewRedisAdapter(rdb, cfg.CartTTL)
	case config.StorageSQLite:
		adapter, err := NewSQLiteAdapter(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		fields = append(fields, zap.String("sqlite_path", cfg.SQLitePath))
		backend = adapter
	case config.StorageFilesystem:
		adapter, err := NewFileAdapter(cfg.LocalStoragePath)
		if err != nil {
			return nil, err
		}
		fields = append(fields, zap.String("base_path", cfg.LocalStoragePath))
		backend = adapter
	case config.StorageMemory, "":
		backend = NewMemoryAdapter()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorageType, cfg.StorageType)
	}

	logger.Info("using cart storage", fields...)
	return backend, nil
}

// NewAnalyticsBackend opens the analytics sink selected by cfg.AnalyticsSink.
func NewAnalyticsBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (AnalyticsBackend, error) {
	switch cfg.AnalyticsSink {
	case config.SinkMySQL:
		db, err := openSQL(ctx, "mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}
		logger.Info("using analytics sink", zap.String("sink", cfg.AnalyticsSink))
		return NewMySQLAdapter(db), nil
	case config.SinkPostgres:
		db, err := openSQL(ctx, "postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("using analytics sink", zap.String("sink", cfg.AnalyticsSink))
		return NewPostgresAdapter(db), nil
	case config.SinkLog, "":
		logger.Info("using analytics sink", zap.String("sink", config.SinkLog))
		return NewLogAdapter(logger.Named("analytics")), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAnalyticsSink, cfg.AnalyticsSink)
	}
}

func openSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
