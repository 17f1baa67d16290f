// Package httphandler contains the Echo HTTP handlers and their DTOs.
package httphandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lizachat/liza/internal/application/directory"
	"github.com/lizachat/liza/internal/domain/user"
	"github.com/lizachat/liza/internal/infrastructure/httpserver"
	"github.com/lizachat/liza/internal/middleware"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID          string `json:"id"`
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// DirectoryResponse represents a directory listing or search result.
type DirectoryResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// DirectoryService defines the interface for directory operations.
// Declared on the consumer side.
type DirectoryService interface {
	// ListDirectory lists all users visible to the viewer.
	ListDirectory(ctx context.Context, query directory.ListDirectoryQuery) ([]*user.User, error)

	// SearchUsers searches the directory on behalf of the viewer.
	SearchUsers(ctx context.Context, query directory.SearchUsersQuery) ([]*user.User, error)

	// GetUser fetches a single record by external ID.
	GetUser(ctx context.Context, query directory.GetUserQuery) (*user.User, error)
}

// DirectoryHandler handles directory-related HTTP requests.
type DirectoryHandler struct {
	directoryService DirectoryService
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(directoryService DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{
		directoryService: directoryService,
	}
}

// RegisterRoutes registers directory routes with the router.
func (h *DirectoryHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().GET("/directory", h.List)
	r.Auth().GET("/directory/search", h.Search)
	r.Auth().GET("/users/me", h.GetMe)
}

// List handles GET /api/v1/directory.
// Lists every known user except the viewer.
func (h *DirectoryHandler) List(c echo.Context) error {
	viewerID := middleware.GetExternalID(c)
	if viewerID == "" {
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}

	query := directory.ListDirectoryQuery{
		ViewerID: viewerID,
	}

	users, err := h.directoryService.ListDirectory(c.Request().Context(), query)
	if err != nil {
		return handleDirectoryError(c, err)
	}

	return httpserver.RespondOK(c, ToDirectoryResponse(users))
}

// Search handles GET /api/v1/directory/search?q=term.
// An empty or whitespace-only term yields an empty result set.
func (h *DirectoryHandler) Search(c echo.Context) error {
	viewerID := middleware.GetExternalID(c)
	if viewerID == "" {
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}

	query := directory.SearchUsersQuery{
		ViewerID: viewerID,
		Term:     c.QueryParam("q"),
	}

	users, err := h.directoryService.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return handleDirectoryError(c, err)
	}

	return httpserver.RespondOK(c, ToDirectoryResponse(users))
}

// GetMe handles GET /api/v1/users/me.
// Returns the viewer's own record.
func (h *DirectoryHandler) GetMe(c echo.Context) error {
	viewerID := middleware.GetExternalID(c)
	if viewerID == "" {
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}

	query := directory.GetUserQuery{
		ExternalID: viewerID,
	}

	u, err := h.directoryService.GetUser(c.Request().Context(), query)
	if err != nil {
		return handleDirectoryError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(u))
}

func handleDirectoryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, directory.ErrUserNotFound):
		return httpserver.RespondErrorWithCode(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, directory.ErrViewerRequired):
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToUserResponse converts a domain User to UserResponse.
func ToUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID().String(),
		ExternalID:  u.ExternalID(),
		DisplayName: u.DisplayName(),
		Email:       u.Email(),
		AvatarURL:   u.AvatarURL(),
		CreatedAt:   u.CreatedAt().Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt().Format(time.RFC3339),
	}
}

// ToDirectoryResponse converts a user slice to a DirectoryResponse.
func ToDirectoryResponse(users []*user.User) DirectoryResponse {
	resp := DirectoryResponse{
		Users: make([]UserResponse, 0, len(users)),
		Total: len(users),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, ToUserResponse(u))
	}
	return resp
}
