package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestRedisLock_SingleHolder(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	a := NewRedisLock(client, "fachwerk:lock:relay", time.Minute)
	b := NewRedisLock(client, "fachwerk:lock:relay", time.Minute)

	ok, release, err := a.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, _, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, release(ctx))

	ok, releaseB, err := b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, releaseB(ctx))
}

func TestRedisLock_ReleaseKeepsForeignToken(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	lock := NewRedisLock(client, "fachwerk:lock:relay", time.Minute)

	ok, release, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate expiry followed by a takeover.
	require.NoError(t, client.Set(ctx, "fachwerk:lock:relay", "someone-else", time.Minute).Err())
	require.NoError(t, release(ctx))

	val, err := client.Get(ctx, "fachwerk:lock:relay").Result()
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
}
