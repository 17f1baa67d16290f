package httphandler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizachat/liza/internal/application/session"
	httphandler "github.com/lizachat/liza/internal/handler/http"
	"github.com/lizachat/liza/internal/infrastructure/identity"
	"github.com/lizachat/liza/internal/middleware"
)

// fakeSessionService is a canned httphandler.SessionService.
type fakeSessionService struct {
	result   session.SyncResult
	startErr error
	endErr   error

	startCmd session.StartSessionCommand
	endCmd   session.EndSessionCommand
}

func (f *fakeSessionService) StartSession(_ context.Context, cmd session.StartSessionCommand) (session.SyncResult, error) {
	f.startCmd = cmd
	return f.result, f.startErr
}

func (f *fakeSessionService) EndSession(_ context.Context, cmd session.EndSessionCommand) error {
	f.endCmd = cmd
	return f.endErr
}

func TestSessionSync_Success(t *testing.T) {
	// Arrange
	u := newDirectoryUser(t, "ext-1", "Ann Lee", "ann@example.com")
	svc := &fakeSessionService{result: session.SyncResult{
		User: u,
		Credential: session.Credential{
			Token:     "tok",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}}
	handler := httphandler.NewSessionHandler(svc)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/session/sync", "ext-1", "")
	c.Set(string(middleware.ContextKeyClaims), &identity.Claims{
		Subject:      "ext-1",
		FullName:     "Ann Lee",
		PrimaryEmail: "ann@example.com",
	})

	// Act
	require.NoError(t, handler.Sync(c))

	// Assert: identity comes from the verified claims.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ext-1", svc.startCmd.Identity.ExternalID)
	assert.Equal(t, "Ann Lee", svc.startCmd.Identity.FullName)

	var resp struct {
		Data httphandler.SyncResponse `json:"data"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "tok", resp.Data.Credential.Token)
	assert.Equal(t, "ext-1", resp.Data.User.ExternalID)
}

func TestSessionSync_MissingClaims(t *testing.T) {
	handler := httphandler.NewSessionHandler(&fakeSessionService{})
	c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/session/sync", "ext-1", "")

	require.NoError(t, handler.Sync(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionSync_InFlightConflict(t *testing.T) {
	handler := httphandler.NewSessionHandler(&fakeSessionService{startErr: session.ErrSyncInFlight})
	c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/session/sync", "ext-1", "")
	c.Set(string(middleware.ContextKeyClaims), &identity.Claims{Subject: "ext-1"})

	require.NoError(t, handler.Sync(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "SYNC_IN_FLIGHT")
}

func TestSessionSync_SyncFailure(t *testing.T) {
	handler := httphandler.NewSessionHandler(&fakeSessionService{
		startErr: &session.SyncError{Message: "failed to obtain messaging credential"},
	})
	c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/session/sync", "ext-1", "")
	c.Set(string(middleware.ContextKeyClaims), &identity.Claims{Subject: "ext-1"})

	require.NoError(t, handler.Sync(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "SYNC_FAILED")
	assert.Contains(t, rec.Body.String(), "failed to obtain messaging credential")
}

func TestSessionEnd_Success(t *testing.T) {
	svc := &fakeSessionService{}
	handler := httphandler.NewSessionHandler(svc)
	c, rec := newAuthedContext(t, http.MethodDelete, "/api/v1/session", "ext-1", "")

	require.NoError(t, handler.End(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ext-1", svc.endCmd.ExternalID)
}

func TestSessionEnd_Unauthenticated(t *testing.T) {
	handler := httphandler.NewSessionHandler(&fakeSessionService{})
	c, rec := newAuthedContext(t, http.MethodDelete, "/api/v1/session", "", "")

	require.NoError(t, handler.End(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
