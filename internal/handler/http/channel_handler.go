package httphandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lizachat/liza/internal/application/chatsession"
	"github.com/lizachat/liza/internal/domain/channel"
	"github.com/lizachat/liza/internal/infrastructure/httpserver"
	"github.com/lizachat/liza/internal/middleware"
)

// ResolveChannelRequest represents the request to resolve a 1:1 channel.
type ResolveChannelRequest struct {
	PeerID string `json:"peer_id"`
}

// ChannelResponse represents a channel in API responses.
type ChannelResponse struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Members []string `json:"members"`
}

// ResolveChannelResponse represents a resolved channel.
type ResolveChannelResponse struct {
	Channel ChannelResponse `json:"channel"`
	Created bool            `json:"created"`
}

// LeaveChannelResponse represents the result of leaving a channel.
type LeaveChannelResponse struct {
	Channel   ChannelResponse `json:"channel"`
	Abandoned bool            `json:"abandoned"`
}

// ChannelService defines the interface for channel operations.
// Declared on the consumer side.
type ChannelService interface {
	// ResolveChannel finds or creates the 1:1 channel and activates it.
	ResolveChannel(ctx context.Context, cmd chatsession.ResolveChannelCommand) (chatsession.ResolveResult, error)

	// LeaveChannel removes the current user from the channel.
	LeaveChannel(ctx context.Context, cmd chatsession.LeaveChannelCommand) (chatsession.LeaveResult, error)
}

// ChannelHandler handles channel-related HTTP requests.
type ChannelHandler struct {
	channelService ChannelService
}

// NewChannelHandler creates a new ChannelHandler.
func NewChannelHandler(channelService ChannelService) *ChannelHandler {
	return &ChannelHandler{
		channelService: channelService,
	}
}

// RegisterRoutes registers channel routes with the router.
func (h *ChannelHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().POST("/channels/resolve", h.Resolve)
	r.Auth().POST("/channels/:id/leave", h.Leave)
}

// Resolve handles POST /api/v1/channels/resolve.
// Resolving the same peer twice yields the same channel.
func (h *ChannelHandler) Resolve(c echo.Context) error {
	selfID := middleware.GetExternalID(c)
	if selfID == "" {
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}

	var req ResolveChannelRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	cmd := chatsession.ResolveChannelCommand{
		SelfID: selfID,
		PeerID: req.PeerID,
	}

	result, err := h.channelService.ResolveChannel(c.Request().Context(), cmd)
	if err != nil {
		return handleChannelError(c, err)
	}

	resp := ResolveChannelResponse{
		Channel: ToChannelResponse(result.Channel),
		Created: result.Created,
	}
	if result.Created {
		return httpserver.RespondCreated(c, resp)
	}
	return httpserver.RespondOK(c, resp)
}

// Leave handles POST /api/v1/channels/:id/leave.
func (h *ChannelHandler) Leave(c echo.Context) error {
	selfID := middleware.GetExternalID(c)
	if selfID == "" {
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}

	cmd := chatsession.LeaveChannelCommand{
		SelfID:    selfID,
		ChannelID: c.Param("id"),
	}

	result, err := h.channelService.LeaveChannel(c.Request().Context(), cmd)
	if err != nil {
		return handleChannelError(c, err)
	}

	return httpserver.RespondOK(c, LeaveChannelResponse{
		Channel:   ToChannelResponse(result.Channel),
		Abandoned: result.Abandoned,
	})
}

func handleChannelError(c echo.Context, err error) error {
	var resErr *chatsession.ResolutionError

	switch {
	case errors.Is(err, chatsession.ErrSelfRequired):
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	case errors.Is(err, chatsession.ErrPeerRequired):
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "PEER_REQUIRED", "peer_id is required")
	case errors.Is(err, chatsession.ErrSelfChat):
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "SELF_CHAT", "cannot open a channel with yourself")
	case errors.Is(err, chatsession.ErrUnknownIdentity):
		return httpserver.RespondErrorWithCode(c, http.StatusNotFound, "UNKNOWN_IDENTITY", "peer is not a known user")
	case errors.Is(err, chatsession.ErrChannelRequired):
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "CHANNEL_REQUIRED", "channel ID is required")
	case errors.As(err, &resErr):
		return httpserver.RespondErrorWithCode(c, http.StatusBadGateway, "RESOLUTION_FAILED", resErr.Message)
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToChannelResponse converts a channel handle to ChannelResponse.
func ToChannelResponse(ch channel.Handle) ChannelResponse {
	members := ch.Members
	if members == nil {
		members = []string{}
	}
	return ChannelResponse{
		ID:      ch.ID,
		Kind:    ch.Kind,
		Members: members,
	}
}
