package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizachat/liza/internal/infrastructure/redisstore"
	"github.com/lizachat/liza/tests/testutil"
)

func TestRateLimitStore_IncrementCounts(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := redisstore.NewRateLimitStore(client, "")
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := store.Increment(ctx, "user:ext-1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}
}

func TestRateLimitStore_WindowStartsOnFirstHit(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := redisstore.NewRateLimitStore(client, "")
	ctx := context.Background()

	_, err := store.Increment(ctx, "user:ext-1", time.Minute)
	require.NoError(t, err)

	ttl, err := store.GetTTL(ctx, "user:ext-1")
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRateLimitStore_GetTTLAbsentKey(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := redisstore.NewRateLimitStore(client, "")

	ttl, err := store.GetTTL(context.Background(), "user:ghost")

	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestRateLimitStore_KeysAreIndependent(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := redisstore.NewRateLimitStore(client, "")
	ctx := context.Background()

	_, err := store.Increment(ctx, "user:ext-1", time.Minute)
	require.NoError(t, err)
	count, err := store.Increment(ctx, "user:ext-2", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, int64(1), count)
}
