package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lizachat/liza/internal/application/session"
)

const (
	defaultCredentialPrefix = "liza:credential:"

	// credentialSafetyMargin keeps a cached credential from being served
	// right before it expires.
	credentialSafetyMargin = 5 * time.Minute
)

// CachedTokenProvider wraps a TokenProvider with a Redis cache so repeated
// syncs within the credential's lifetime reuse the same token. Cache
// failures degrade to minting; they never fail the sync.
type CachedTokenProvider struct {
	inner     session.TokenProvider
	client    *redis.Client
	keyPrefix string
	logger    *slog.Logger
}

// CachedTokenProviderConfig contains configuration for CachedTokenProvider.
type CachedTokenProviderConfig struct {
	Inner     session.TokenProvider
	Client    *redis.Client
	KeyPrefix string
	Logger    *slog.Logger
}

// NewCachedTokenProvider creates a caching wrapper around the given provider.
func NewCachedTokenProvider(cfg CachedTokenProviderConfig) (*CachedTokenProvider, error) {
	if cfg.Inner == nil {
		return nil, errors.New("inner token provider is required")
	}
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = defaultCredentialPrefix
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CachedTokenProvider{
		inner:     cfg.Inner,
		client:    cfg.Client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}, nil
}

// cachedCredential is the Redis value shape.
type cachedCredential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateToken returns a cached credential when a fresh enough one exists,
// otherwise mints through the inner provider and caches the result.
func (p *CachedTokenProvider) CreateToken(ctx context.Context, externalID string) (session.Credential, error) {
	if externalID == "" {
		return session.Credential{}, ErrUserIDRequired
	}

	key := p.keyPrefix + externalID

	raw, err := p.client.Get(ctx, key).Result()
	if err == nil {
		var cached cachedCredential
		if unmarshalErr := json.Unmarshal([]byte(raw), &cached); unmarshalErr == nil {
			if time.Until(cached.ExpiresAt) > credentialSafetyMargin {
				return session.Credential{
					Token:     cached.Token,
					ExpiresAt: cached.ExpiresAt,
				}, nil
			}
		}
	} else if !errors.Is(err, redis.Nil) {
		p.logger.WarnContext(ctx, "credential cache read failed",
			slog.String("external_id", externalID),
			slog.String("error", err.Error()),
		)
	}

	cred, err := p.inner.CreateToken(ctx, externalID)
	if err != nil {
		return session.Credential{}, err
	}

	p.store(ctx, key, cred)
	return cred, nil
}

// Invalidate drops the cached credential for the identity, used on sign-out
// so the next sync mints a fresh token.
func (p *CachedTokenProvider) Invalidate(ctx context.Context, externalID string) error {
	if externalID == "" {
		return ErrUserIDRequired
	}

	if err := p.client.Del(ctx, p.keyPrefix+externalID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate credential cache: %w", err)
	}
	return nil
}

func (p *CachedTokenProvider) store(ctx context.Context, key string, cred session.Credential) {
	ttl := time.Until(cred.ExpiresAt) - credentialSafetyMargin
	if ttl <= 0 {
		return
	}

	encoded, err := json.Marshal(cachedCredential{
		Token:     cred.Token,
		ExpiresAt: cred.ExpiresAt,
	})
	if err != nil {
		return
	}

	if setErr := p.client.Set(ctx, key, encoded, ttl).Err(); setErr != nil {
		p.logger.WarnContext(ctx, "credential cache write failed",
			slog.String("error", setErr.Error()),
		)
	}
}
