package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/glam-abaya/cartstore/internal/port"
)

type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration // 0 keeps carts forever
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, ttl: ttl}
}

func (r *RedisAdapter) Slot(key string) port.CartSlot {
	return &redisSlot{adapter: r, key: key}
}

func (r *RedisAdapter) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisAdapter) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *RedisAdapter) Close() error {
	return r.client.Close()
}

type redisSlot struct {
	adapter *RedisAdapter
	key     string
}

func (s *redisSlot) Load(ctx context.Context) ([]byte, error) {
	return s.adapter.Load(ctx, s.key)
}

func (s *redisSlot) Save(ctx context.Context, data []byte) error {
	return s.adapter.Save(ctx, s.key, data)
}
