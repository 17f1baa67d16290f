// Package redisstore keeps per-user session state in Redis: the currently
// active channel and a short-lived cache of minted messaging credentials.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Active channel store errors.
var (
	ErrNoActiveChannel = errors.New("no active channel")
	ErrUserIDRequired  = errors.New("externalID is required")
)

const (
	defaultActiveChannelPrefix = "liza:active_channel:"

	// DefaultActiveChannelTTL expires stale selections that outlive the
	// browser session that made them.
	DefaultActiveChannelTTL = 24 * time.Hour
)

// ActiveChannelStore tracks which channel each user currently has selected.
type ActiveChannelStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// ActiveChannelStoreConfig contains configuration for ActiveChannelStore.
type ActiveChannelStoreConfig struct {
	Client    *redis.Client
	KeyPrefix string
	TTL       time.Duration
}

// NewActiveChannelStore creates a new Redis-based active channel store.
func NewActiveChannelStore(cfg ActiveChannelStoreConfig) *ActiveChannelStore {
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = defaultActiveChannelPrefix
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultActiveChannelTTL
	}

	return &ActiveChannelStore{
		client:    cfg.Client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *ActiveChannelStore) key(externalID string) string {
	return s.keyPrefix + externalID
}

// SetActive records the channel as the user's current selection.
func (s *ActiveChannelStore) SetActive(ctx context.Context, externalID, channelID string) error {
	if externalID == "" {
		return ErrUserIDRequired
	}
	if channelID == "" {
		return errors.New("channelID is required")
	}

	if err := s.client.Set(ctx, s.key(externalID), channelID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set active channel: %w", err)
	}
	return nil
}

// ClearActive drops the user's current selection. Clearing an absent
// selection is a no-op.
func (s *ActiveChannelStore) ClearActive(ctx context.Context, externalID string) error {
	if externalID == "" {
		return ErrUserIDRequired
	}

	if err := s.client.Del(ctx, s.key(externalID)).Err(); err != nil {
		return fmt.Errorf("failed to clear active channel: %w", err)
	}
	return nil
}

// GetActive returns the user's currently selected channel ID.
func (s *ActiveChannelStore) GetActive(ctx context.Context, externalID string) (string, error) {
	if externalID == "" {
		return "", ErrUserIDRequired
	}

	channelID, err := s.client.Get(ctx, s.key(externalID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoActiveChannel
		}
		return "", fmt.Errorf("failed to get active channel: %w", err)
	}
	return channelID, nil
}
