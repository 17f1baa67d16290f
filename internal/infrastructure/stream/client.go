// Package stream is the client for the messaging collaborator: a
// Stream-Chat-shaped REST API that owns channel storage, membership and
// message delivery. Everything hard (ordering, presence, media) lives on the
// collaborator side; this client only moves state across the wire.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lizachat/liza/internal/application/chatsession"
	"github.com/lizachat/liza/internal/application/session"
	"github.com/lizachat/liza/internal/domain/channel"
	"github.com/lizachat/liza/internal/domain/errs"
)

// Client errors.
var (
	ErrMissingAPIKey  = errors.New("messaging API key is not configured")
	ErrRequestFailed  = errors.New("messaging API request failed")
	ErrChannelMissing = errors.New("messaging API returned no channel")
)

// DefaultRequestTimeout bounds one API round trip.
const DefaultRequestTimeout = 10 * time.Second

// ClientConfig contains configuration for the messaging client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "https://chat.stream-io-api.com".
	BaseURL string

	APIKey    string
	APISecret string

	// Timeout bounds each request. Defaults to DefaultRequestTimeout.
	Timeout time.Duration

	Logger *slog.Logger
}

// Client implements the application-layer Messaging interfaces over HTTP.
type Client struct {
	baseURL     string
	apiKey      string
	serverToken string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a messaging client. The server credential is minted once
// at construction; it does not expire.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("%w: BaseURL is required", ErrRequestFailed)
	}
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.APISecret == "" {
		return nil, ErrMissingSecret
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	token, err := serverToken([]byte(config.APISecret))
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		apiKey:      config.APIKey,
		serverToken: token,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}, nil
}

// channelPayload is the wire shape of one channel.
type channelPayload struct {
	ID      string   `json:"id"`
	Kind    string   `json:"type"`
	Members []string `json:"members"`
}

func (p channelPayload) toHandle() channel.Handle {
	return channel.Handle{
		ID:      p.ID,
		Kind:    p.Kind,
		Members: p.Members,
	}
}

// ConnectSession upserts the user's profile at the collaborator, binding the
// session identity to the external ID. The credential itself is consumed by
// the browser-side SDK; the server only has to make the profile known.
func (c *Client) ConnectSession(ctx context.Context, profile session.Profile, _ session.Credential) error {
	body := map[string]any{
		"users": map[string]any{
			profile.ExternalID: map[string]any{
				"id":    profile.ExternalID,
				"name":  profile.DisplayName,
				"image": profile.AvatarURL,
			},
		},
	}

	if err := c.do(ctx, http.MethodPost, "/users", body, nil); err != nil {
		return fmt.Errorf("failed to connect messaging session: %w", err)
	}
	return nil
}

// DisconnectSession revokes the user's outstanding sessions. Safe to call
// when no session was ever established; the collaborator treats an unknown
// or idle user as a no-op.
func (c *Client) DisconnectSession(ctx context.Context, externalID string) error {
	path := "/users/" + url.PathEscape(externalID) + "/sessions"
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to disconnect messaging session: %w", err)
	}
	return nil
}

// ListChannels returns the channels matching the filter. The filter is
// user-scoped; the collaborator never exposes a full-system listing.
func (c *Client) ListChannels(ctx context.Context, filter chatsession.ChannelFilter) ([]channel.Handle, error) {
	body := map[string]any{
		"filter": map[string]any{
			"members": map[string]any{"$in": []string{filter.MemberID}},
			"type":    map[string]any{"$in": filter.Kinds},
		},
		"sort": []map[string]any{
			{"field": "last_message_at", "direction": -1},
		},
	}

	var resp struct {
		Channels []channelPayload `json:"channels"`
	}
	if err := c.do(ctx, http.MethodPost, "/channels/query", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	handles := make([]channel.Handle, 0, len(resp.Channels))
	for _, ch := range resp.Channels {
		handles = append(handles, ch.toHandle())
	}
	return handles, nil
}

// CreateDirectChannel requests a 1:1 channel for the pair. The request
// carries the canonical sorted pair key, which the collaborator uses to
// deduplicate racing creations from independent clients.
func (c *Client) CreateDirectChannel(ctx context.Context, self, peer string) (channel.Handle, error) {
	body := map[string]any{
		"type":     channel.KindMessaging,
		"members":  []string{self, peer},
		"pair_key": channel.PairKey(self, peer),
	}

	var resp struct {
		Channel *channelPayload `json:"channel"`
	}
	if err := c.do(ctx, http.MethodPost, "/channels", body, &resp); err != nil {
		return channel.Handle{}, fmt.Errorf("failed to create channel: %w", err)
	}
	if resp.Channel == nil {
		return channel.Handle{}, ErrChannelMissing
	}

	c.logger.InfoContext(ctx, "created 1:1 channel",
		slog.String("channel_id", resp.Channel.ID),
		slog.String("pair", channel.PairKey(self, peer)),
	)
	return resp.Channel.toHandle(), nil
}

// WatchChannel subscribes to channel state and returns the current handle.
func (c *Client) WatchChannel(ctx context.Context, channelID string) (channel.Handle, error) {
	path := "/channels/" + url.PathEscape(channelID) + "/watch"

	var resp struct {
		Channel *channelPayload `json:"channel"`
	}
	if err := c.do(ctx, http.MethodPost, path, map[string]any{}, &resp); err != nil {
		return channel.Handle{}, fmt.Errorf("failed to watch channel: %w", err)
	}
	if resp.Channel == nil {
		return channel.Handle{}, ErrChannelMissing
	}
	return resp.Channel.toHandle(), nil
}

// RemoveMembers removes the given members and returns the updated handle.
// The channel survives with however many members remain.
func (c *Client) RemoveMembers(ctx context.Context, channelID string, memberIDs []string) (channel.Handle, error) {
	path := "/channels/" + url.PathEscape(channelID) + "/members/remove"
	body := map[string]any{
		"members": memberIDs,
	}

	var resp struct {
		Channel *channelPayload `json:"channel"`
	}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return channel.Handle{}, fmt.Errorf("failed to remove members: %w", err)
	}
	if resp.Channel == nil {
		return channel.Handle{}, ErrChannelMissing
	}
	return resp.Channel.toHandle(), nil
}

// do executes one authorized API round trip.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + path + "?api_key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", c.serverToken)
	req.Header.Set("Stream-Auth-Type", "jwt")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errs.ErrNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", ErrRequestFailed, resp.Status, strings.TrimSpace(string(payload)))
	}

	if out != nil {
		if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
			return fmt.Errorf("failed to decode response: %w", decodeErr)
		}
	}
	return nil
}
