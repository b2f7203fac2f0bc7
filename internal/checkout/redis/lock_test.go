package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestAcquireIsExclusive(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewLock(client)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "cs_123", "owner-a")
	require.NoError(t, err)
	assert.True(t, ok)

	// A concurrent settlement for the same session is shut out.
	ok, err = lock.Acquire(ctx, "cs_123", "owner-b")
	require.NoError(t, err)
	assert.False(t, ok)

	// A different session is unaffected.
	ok, err = lock.Acquire(ctx, "cs_999", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseFreesTheLock(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewLock(client)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "cs_123", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, lock.Release(ctx, "cs_123", "owner-a"))

	ok, err = lock.Acquire(ctx, "cs_123", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseRespectsOwnership(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewLock(client)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "cs_123", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	// A stranger's release leaves the lock in place.
	require.NoError(t, lock.Release(ctx, "cs_123", "owner-b"))

	ok, err = lock.Acquire(ctx, "cs_123", "owner-c")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReleaseAfterExpiryIsSafe(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := &Lock{Client: client, TTL: 50 * time.Millisecond}
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "cs_123", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(100 * time.Millisecond)

	// The lock expired underneath us; releasing must not error, and the
	// session is free for the next settlement attempt.
	require.NoError(t, lock.Release(ctx, "cs_123", "owner-a"))

	ok, err = lock.Acquire(ctx, "cs_123", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok)
}
