package stream_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizachat/liza/internal/infrastructure/stream"
)

const testSecret = "test-api-secret"

func TestNewTokenProvider_RequiresSecret(t *testing.T) {
	_, err := stream.NewTokenProvider("", time.Hour)

	require.ErrorIs(t, err, stream.ErrMissingSecret)
}

func TestCreateToken_SignedClaims(t *testing.T) {
	// Arrange
	provider, err := stream.NewTokenProvider(testSecret, time.Hour)
	require.NoError(t, err)

	// Act
	cred, err := provider.CreateToken(context.Background(), "ext-1")

	// Assert: the token verifies against the secret and carries the
	// expected claims.
	require.NoError(t, err)
	require.NotEmpty(t, cred.Token)

	parsed, err := jwt.Parse(cred.Token, func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "ext-1", claims["user_id"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, cred.ExpiresAt, exp.Time, time.Second)
	assert.WithinDuration(t, time.Now().Add(time.Hour), cred.ExpiresAt, time.Minute)
}

func TestCreateToken_RequiresUserID(t *testing.T) {
	provider, err := stream.NewTokenProvider(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = provider.CreateToken(context.Background(), "")

	require.ErrorIs(t, err, stream.ErrMissingUserID)
}

func TestCreateToken_DefaultTTL(t *testing.T) {
	provider, err := stream.NewTokenProvider(testSecret, 0)
	require.NoError(t, err)

	cred, err := provider.CreateToken(context.Background(), "ext-1")

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(stream.DefaultTokenTTL), cred.ExpiresAt, time.Minute)
}
