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

func TestActiveChannelStore_SetGetClear(t *testing.T) {
	// Arrange
	client := testutil.SetupTestRedis(t)
	store := redisstore.NewActiveChannelStore(redisstore.ActiveChannelStoreConfig{Client: client})
	ctx := context.Background()

	// Act / Assert
	require.NoError(t, store.SetActive(ctx, "ext-1", "ch-1"))

	channelID, err := store.GetActive(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, "ch-1", channelID)

	require.NoError(t, store.ClearActive(ctx, "ext-1"))

	_, err = store.GetActive(ctx, "ext-1")
	require.ErrorIs(t, err, redisstore.ErrNoActiveChannel)
}

func TestActiveChannelStore_SetOverwrites(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := redisstore.NewActiveChannelStore(redisstore.ActiveChannelStoreConfig{Client: client})
	ctx := context.Background()

	require.NoError(t, store.SetActive(ctx, "ext-1", "ch-1"))
	require.NoError(t, store.SetActive(ctx, "ext-1", "ch-2"))

	channelID, err := store.GetActive(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, "ch-2", channelID)
}

func TestActiveChannelStore_ClearAbsentIsNoOp(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := redisstore.NewActiveChannelStore(redisstore.ActiveChannelStoreConfig{Client: client})

	require.NoError(t, store.ClearActive(context.Background(), "ext-1"))
}

func TestActiveChannelStore_ValidatesInput(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := redisstore.NewActiveChannelStore(redisstore.ActiveChannelStoreConfig{Client: client})
	ctx := context.Background()

	require.ErrorIs(t, store.SetActive(ctx, "", "ch-1"), redisstore.ErrUserIDRequired)
	require.Error(t, store.SetActive(ctx, "ext-1", ""))
	require.ErrorIs(t, store.ClearActive(ctx, ""), redisstore.ErrUserIDRequired)
	_, err := store.GetActive(ctx, "")
	require.ErrorIs(t, err, redisstore.ErrUserIDRequired)
}

func TestActiveChannelStore_EntriesExpire(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := redisstore.NewActiveChannelStore(redisstore.ActiveChannelStoreConfig{
		Client: client,
		TTL:    50 * time.Millisecond,
	})
	ctx := context.Background()

	require.NoError(t, store.SetActive(ctx, "ext-1", "ch-1"))
	time.Sleep(100 * time.Millisecond)

	_, err := store.GetActive(ctx, "ext-1")
	require.ErrorIs(t, err, redisstore.ErrNoActiveChannel)
}
