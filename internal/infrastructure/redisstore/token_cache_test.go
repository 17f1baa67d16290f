package redisstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizachat/liza/internal/application/session"
	"github.com/lizachat/liza/internal/infrastructure/redisstore"
	"github.com/lizachat/liza/tests/testutil"
)

// countingProvider mints unique tokens and counts mints.
type countingProvider struct {
	mints int
	ttl   time.Duration
}

func (p *countingProvider) CreateToken(_ context.Context, externalID string) (session.Credential, error) {
	p.mints++
	return session.Credential{
		Token:     fmt.Sprintf("token-%s-%d", externalID, p.mints),
		ExpiresAt: time.Now().Add(p.ttl),
	}, nil
}

func newCachedProvider(t *testing.T, inner session.TokenProvider) *redisstore.CachedTokenProvider {
	t.Helper()

	client := testutil.SetupTestRedis(t)
	provider, err := redisstore.NewCachedTokenProvider(redisstore.CachedTokenProviderConfig{
		Inner:  inner,
		Client: client,
	})
	require.NoError(t, err)
	return provider
}

func TestCachedTokenProvider_ReusesFreshCredential(t *testing.T) {
	// Arrange
	inner := &countingProvider{ttl: time.Hour}
	provider := newCachedProvider(t, inner)
	ctx := context.Background()

	// Act
	first, err := provider.CreateToken(ctx, "ext-1")
	require.NoError(t, err)
	second, err := provider.CreateToken(ctx, "ext-1")
	require.NoError(t, err)

	// Assert: one mint served both syncs.
	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, 1, inner.mints)
}

func TestCachedTokenProvider_ShortLivedCredentialNotCached(t *testing.T) {
	// Credentials inside the safety margin are minted fresh every time.
	inner := &countingProvider{ttl: time.Minute}
	provider := newCachedProvider(t, inner)
	ctx := context.Background()

	_, err := provider.CreateToken(ctx, "ext-1")
	require.NoError(t, err)
	_, err = provider.CreateToken(ctx, "ext-1")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.mints)
}

func TestCachedTokenProvider_InvalidateForcesRemint(t *testing.T) {
	inner := &countingProvider{ttl: time.Hour}
	provider := newCachedProvider(t, inner)
	ctx := context.Background()

	first, err := provider.CreateToken(ctx, "ext-1")
	require.NoError(t, err)

	require.NoError(t, provider.Invalidate(ctx, "ext-1"))

	second, err := provider.CreateToken(ctx, "ext-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, 2, inner.mints)
}

func TestCachedTokenProvider_CredentialsAreKeyedPerIdentity(t *testing.T) {
	inner := &countingProvider{ttl: time.Hour}
	provider := newCachedProvider(t, inner)
	ctx := context.Background()

	first, err := provider.CreateToken(ctx, "ext-1")
	require.NoError(t, err)
	second, err := provider.CreateToken(ctx, "ext-2")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, 2, inner.mints)
}

func TestCachedTokenProvider_RequiresUserID(t *testing.T) {
	provider := newCachedProvider(t, &countingProvider{ttl: time.Hour})

	_, err := provider.CreateToken(context.Background(), "")

	require.ErrorIs(t, err, redisstore.ErrUserIDRequired)
}
