package httphandler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizachat/liza/internal/application/directory"
	"github.com/lizachat/liza/internal/domain/user"
	httphandler "github.com/lizachat/liza/internal/handler/http"
	"github.com/lizachat/liza/internal/middleware"
)

// newAuthedContext builds an echo context carrying a verified external ID.
func newAuthedContext(t *testing.T, method, target, externalID string, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	c := echo.New().NewContext(req, rec)
	if externalID != "" {
		c.Set(string(middleware.ContextKeyExternalID), externalID)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// fakeDirectoryService is a canned httphandler.DirectoryService.
type fakeDirectoryService struct {
	users []*user.User
	err   error
}

func (f *fakeDirectoryService) ListDirectory(_ context.Context, _ directory.ListDirectoryQuery) ([]*user.User, error) {
	return f.users, f.err
}

func (f *fakeDirectoryService) SearchUsers(_ context.Context, query directory.SearchUsersQuery) ([]*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return directory.Search(f.users, query.Term), nil
}

func (f *fakeDirectoryService) GetUser(_ context.Context, query directory.GetUserQuery) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ExternalID() == query.ExternalID {
			return u, nil
		}
	}
	return nil, directory.ErrUserNotFound
}

func newDirectoryUser(t *testing.T, externalID, name, email string) *user.User {
	t.Helper()
	u, err := user.NewUser(externalID, name, email, "")
	require.NoError(t, err)
	return u
}

func TestDirectoryList_Success(t *testing.T) {
	// Arrange
	handler := httphandler.NewDirectoryHandler(&fakeDirectoryService{users: []*user.User{
		newDirectoryUser(t, "u1", "Alice", "alice@example.com"),
		newDirectoryUser(t, "u2", "Bob", "bob@example.com"),
	}})
	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/directory", "viewer", "")

	// Act
	require.NoError(t, handler.List(c))

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                          `json:"success"`
		Data    httphandler.DirectoryResponse `json:"data"`
	}
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, "Alice", resp.Data.Users[0].DisplayName)
}

func TestDirectoryList_Unauthenticated(t *testing.T) {
	handler := httphandler.NewDirectoryHandler(&fakeDirectoryService{})
	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/directory", "", "")

	require.NoError(t, handler.List(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDirectorySearch_EmptyTermYieldsEmptyResult(t *testing.T) {
	handler := httphandler.NewDirectoryHandler(&fakeDirectoryService{users: []*user.User{
		newDirectoryUser(t, "u1", "Alice", "alice@example.com"),
	}})
	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/directory/search", "viewer", "")

	require.NoError(t, handler.Search(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data httphandler.DirectoryResponse `json:"data"`
	}
	decodeBody(t, rec, &resp)
	assert.Zero(t, resp.Data.Total)
	assert.NotNil(t, resp.Data.Users)
}

func TestDirectorySearch_MatchesTerm(t *testing.T) {
	handler := httphandler.NewDirectoryHandler(&fakeDirectoryService{users: []*user.User{
		newDirectoryUser(t, "u1", "Alice", "alice@example.com"),
		newDirectoryUser(t, "u2", "Bob", "bob@example.com"),
	}})
	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/directory/search?q=ali", "viewer", "")

	require.NoError(t, handler.Search(c))

	var resp struct {
		Data httphandler.DirectoryResponse `json:"data"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "u1", resp.Data.Users[0].ExternalID)
}

func TestGetMe_Success(t *testing.T) {
	handler := httphandler.NewDirectoryHandler(&fakeDirectoryService{users: []*user.User{
		newDirectoryUser(t, "viewer", "Me", "me@example.com"),
	}})
	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/users/me", "viewer", "")

	require.NoError(t, handler.GetMe(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data httphandler.UserResponse `json:"data"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "viewer", resp.Data.ExternalID)
	assert.Equal(t, "me@example.com", resp.Data.Email)
}

func TestGetMe_NotFound(t *testing.T) {
	handler := httphandler.NewDirectoryHandler(&fakeDirectoryService{})
	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/users/me", "ghost", "")

	require.NoError(t, handler.GetMe(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
