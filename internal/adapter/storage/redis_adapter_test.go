package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisSlot_LoadMissing(t *testing.T) {
	_, client := newMiniRedis(t)
	adapter := NewRedisAdapter(client, 0)

	data, err := adapter.Slot("glam_cart").Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisSlot_SaveLoad(t *testing.T) {
	mr, client := newMiniRedis(t)
	adapter := NewRedisAdapter(client, 0)
	ctx := context.Background()
	slot := adapter.Slot("glam_cart:s1")

	require.NoError(t, slot.Save(ctx, []byte(`{"version":1,"items":[]}`)))
	require.NoError(t, slot.Save(ctx, []byte(`{"version":1,"items":[1]}`)))

	data, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"items":[1]}`, string(data))

	stored, err := mr.Get("glam_cart:s1")
	require.NoError(t, err)
	assert.Equal(t, string(data), stored)
	assert.Zero(t, mr.TTL("glam_cart:s1"))
}

func TestRedisSlot_TTL(t *testing.T) {
	mr, client := newMiniRedis(t)
	adapter := NewRedisAdapter(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, adapter.Slot("glam_cart").Save(ctx, []byte("{}")))
	assert.Equal(t, time.Hour, mr.TTL("glam_cart"))

	mr.FastForward(2 * time.Hour)
	data, err := adapter.Slot("glam_cart").Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisSlot_ServerDown(t *testing.T) {
	mr, client := newMiniRedis(t)
	adapter := NewRedisAdapter(client, 0)
	mr.Close()

	err := adapter.Slot("glam_cart").Save(context.Background(), []byte("{}"))
	assert.Error(t, err)

	_, err = adapter.Slot("glam_cart").Load(context.Background())
	assert.Error(t, err)
}

func TestRedisSlot_LiveServer(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	ctx := context.Background()
	key := "glam_cart:test-live"
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	slot := NewRedisAdapter(client, time.Minute).Slot(key)
	require.NoError(t, slot.Save(ctx, []byte("{}")))

	data, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
