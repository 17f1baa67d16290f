package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lizachat/liza/internal/application/session"
)

// Token errors.
var (
	ErrMissingUserID = errors.New("cannot mint messaging token without a user ID")
	ErrMissingSecret = errors.New("messaging API secret is not configured")
)

// DefaultTokenTTL is used when no TTL is configured.
const DefaultTokenTTL = 1 * time.Hour

// TokenProvider mints user session credentials for the messaging
// collaborator: HS256 JWTs signed with the API secret, the same scheme the
// provider's own server SDKs use.
//
// It fails closed: an empty external ID yields an error, never an empty
// credential.
type TokenProvider struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenProvider creates a token provider for the given API secret.
func NewTokenProvider(apiSecret string, ttl time.Duration) (*TokenProvider, error) {
	if apiSecret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenProvider{
		secret: []byte(apiSecret),
		ttl:    ttl,
	}, nil
}

// CreateToken mints a credential bound to the external ID.
func (p *TokenProvider) CreateToken(_ context.Context, externalID string) (session.Credential, error) {
	if externalID == "" {
		return session.Credential{}, ErrMissingUserID
	}

	now := time.Now().UTC()
	expiresAt := now.Add(p.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": externalID,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return session.Credential{}, fmt.Errorf("failed to sign messaging token: %w", err)
	}

	return session.Credential{
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

// serverToken mints the server-side credential used to authorize API calls.
func serverToken(secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"server": true,
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign server token: %w", err)
	}
	return signed, nil
}
