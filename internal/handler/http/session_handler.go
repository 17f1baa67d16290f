package httphandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lizachat/liza/internal/application/session"
	"github.com/lizachat/liza/internal/infrastructure/httpserver"
	"github.com/lizachat/liza/internal/middleware"
)

// SyncResponse represents a completed identity sync.
type SyncResponse struct {
	User       UserResponse       `json:"user"`
	Credential CredentialResponse `json:"credential"`
}

// CredentialResponse carries the messaging credential for the browser SDK.
type CredentialResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// SessionService defines the interface for session operations.
// Declared on the consumer side.
type SessionService interface {
	// StartSession reconciles the identity and connects the messaging session.
	StartSession(ctx context.Context, cmd session.StartSessionCommand) (session.SyncResult, error)

	// EndSession tears down the messaging session for the identity.
	EndSession(ctx context.Context, cmd session.EndSessionCommand) error
}

// SessionHandler handles session lifecycle HTTP requests.
type SessionHandler struct {
	sessionService SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// RegisterRoutes registers session routes with the router.
func (h *SessionHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().POST("/session/sync", h.Sync)
	r.Auth().DELETE("/session", h.End)
}

// Sync handles POST /api/v1/session/sync.
// The identity comes from the verified token, never from the request body.
func (h *SessionHandler) Sync(c echo.Context) error {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}

	cmd := session.StartSessionCommand{
		Identity: session.Identity{
			ExternalID:   claims.Subject,
			FullName:     claims.FullName,
			FirstName:    claims.FirstName,
			PrimaryEmail: claims.PrimaryEmail,
			AvatarURL:    claims.AvatarURL,
		},
	}

	result, err := h.sessionService.StartSession(c.Request().Context(), cmd)
	if err != nil {
		return handleSessionError(c, err)
	}

	return httpserver.RespondOK(c, SyncResponse{
		User: ToUserResponse(result.User),
		Credential: CredentialResponse{
			Token:     result.Credential.Token,
			ExpiresAt: result.Credential.ExpiresAt.Format(time.RFC3339),
		},
	})
}

// End handles DELETE /api/v1/session.
// Safe to call even when no messaging session was ever connected.
func (h *SessionHandler) End(c echo.Context) error {
	externalID := middleware.GetExternalID(c)
	if externalID == "" {
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}

	cmd := session.EndSessionCommand{
		ExternalID: externalID,
	}

	if err := h.sessionService.EndSession(c.Request().Context(), cmd); err != nil {
		return handleSessionError(c, err)
	}

	return httpserver.RespondNoContent(c)
}

func handleSessionError(c echo.Context, err error) error {
	var syncErr *session.SyncError

	switch {
	case errors.Is(err, session.ErrIdentityRequired):
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	case errors.Is(err, session.ErrSyncInFlight):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "SYNC_IN_FLIGHT", "a sync for this identity is already running")
	case errors.As(err, &syncErr):
		return httpserver.RespondErrorWithCode(c, http.StatusBadGateway, "SYNC_FAILED", syncErr.Message)
	default:
		return httpserver.RespondError(c, err)
	}
}
