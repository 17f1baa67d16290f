package httpserver_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizachat/liza/internal/domain/errs"
	"github.com/lizachat/liza/internal/infrastructure/httpserver"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestRespondOK_Envelope(t *testing.T) {
	c, rec := newTestContext(t)

	require.NoError(t, httpserver.RespondOK(c, map[string]string{"hello": "world"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"hello":"world"`)
}

func TestRespondError_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", errs.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"already exists", errs.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{"invalid input", errs.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{"unauthorized", errs.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"upstream unavailable", errs.ErrUnavailable, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(t)

			require.NoError(t, httpserver.RespondError(c, tt.err))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestRespondError_WrappedErrorsStillMap(t *testing.T) {
	c, rec := newTestContext(t)

	wrapped := errors.Join(errors.New("context"), errs.ErrNotFound)
	require.NoError(t, httpserver.RespondError(c, wrapped))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
