package mongodb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizachat/liza/internal/domain/errs"
	mongodbinfra "github.com/lizachat/liza/internal/infrastructure/mongodb"
	"github.com/lizachat/liza/internal/infrastructure/repository/mongodb"
	"github.com/lizachat/liza/tests/testutil"
)

func newTestUserStore(t *testing.T) *mongodb.MongoUserStore {
	t.Helper()

	db := testutil.SetupTestDatabase(t)
	require.NoError(t, mongodbinfra.CreateAllIndexes(context.Background(), db))
	return mongodb.NewMongoUserStore(db.Collection(mongodbinfra.CollectionUsers))
}

func TestMongoUserStore_UpsertInsertsThenUpdates(t *testing.T) {
	// Arrange
	store := newTestUserStore(t)
	ctx := context.Background()

	// Act: first sync inserts, second updates the mutable fields.
	created, err := store.Upsert(ctx, "ext-1", "Ann Lee", "ann@example.com", "")
	require.NoError(t, err)
	updated, err := store.Upsert(ctx, "ext-1", "Ann L.", "changed@example.com", "pic")
	require.NoError(t, err)

	// Assert: identity and email are fixed at insert time.
	assert.Equal(t, created.ID(), updated.ID())
	assert.Equal(t, "Ann L.", updated.DisplayName())
	assert.Equal(t, "pic", updated.AvatarURL())
	assert.Equal(t, "ann@example.com", updated.Email())

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMongoUserStore_GetByExternalID(t *testing.T) {
	store := newTestUserStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, "ext-1", "Ann Lee", "ann@example.com", "")
	require.NoError(t, err)

	u, err := store.GetByExternalID(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", u.DisplayName())

	_, err = store.GetByExternalID(ctx, "ghost")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMongoUserStore_ListAllInInsertionOrder(t *testing.T) {
	store := newTestUserStore(t)
	ctx := context.Background()

	for _, id := range []string{"ext-1", "ext-2", "ext-3"} {
		_, err := store.Upsert(ctx, id, "User "+id, id+"@example.com", "")
		require.NoError(t, err)
	}

	users, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "ext-1", users[0].ExternalID())
	assert.Equal(t, "ext-3", users[2].ExternalID())
}

func TestMongoUserStore_UpsertValidatesInput(t *testing.T) {
	store := newTestUserStore(t)

	_, err := store.Upsert(context.Background(), "", "Ann", "ann@example.com", "")
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = store.Upsert(context.Background(), "ext-1", "", "ann@example.com", "")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}
