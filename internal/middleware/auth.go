// Package middleware contains the Echo middleware chain: auth, logging,
// recovery, CORS and rate limiting.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lizachat/liza/internal/infrastructure/identity"
)

// Context keys for authentication data.
type contextKey string

const (
	// ContextKeyExternalID is the context key for the identity provider's
	// user ID.
	ContextKeyExternalID contextKey = "external_id"

	// ContextKeyClaims is the context key for the full verified claims.
	ContextKeyClaims contextKey = "identity_claims"
)

// Auth errors.
var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Logger is the structured logger for auth events.
	Logger *slog.Logger

	// Verifier validates identity provider session tokens.
	Verifier identity.Verifier

	// SkipPaths are paths that don't require authentication.
	SkipPaths []string
}

// DefaultAuthConfig returns an AuthConfig with sensible defaults.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Logger:    slog.Default(),
		SkipPaths: []string{"/healthz", "/readyz", "/metrics"},
	}
}

// Auth returns an authentication middleware with the given configuration.
// It verifies the bearer token against the identity provider's JWKS and
// stores the asserted identity in the request context.
func Auth(config AuthConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if _, ok := skipPaths[path]; ok {
				return next(c)
			}

			token, tokenErr := extractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if tokenErr != nil {
				return respondAuthError(c, tokenErr)
			}

			if config.Verifier == nil {
				config.Logger.Error("identity verifier not configured")
				return respondAuthError(c, identity.ErrInvalidToken)
			}

			claims, verifyErr := config.Verifier.Verify(c.Request().Context(), token)
			if verifyErr != nil {
				config.Logger.Warn("token verification failed",
					slog.String("error", verifyErr.Error()),
					slog.String("path", path),
					slog.String("remote_ip", c.RealIP()),
				)
				return respondAuthError(c, verifyErr)
			}

			c.Set(string(ContextKeyExternalID), claims.Subject)
			c.Set(string(ContextKeyClaims), claims)

			config.Logger.Debug("user authenticated",
				slog.String("external_id", claims.Subject),
				slog.String("path", path),
			)

			return next(c)
		}
	}
}

// extractBearerToken extracts the token from a Bearer authorization header.
func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrInvalidAuthHeader
	}

	return token, nil
}

// respondAuthError sends an authentication error response.
func respondAuthError(c echo.Context, err error) error {
	code := "UNAUTHORIZED"
	message := "Authentication required"

	switch {
	case errors.Is(err, ErrMissingAuthHeader):
		message = "Missing authorization header"
	case errors.Is(err, ErrInvalidAuthHeader):
		message = "Invalid authorization header format"
	case errors.Is(err, identity.ErrTokenExpired):
		message = "Token has expired"
		code = "TOKEN_EXPIRED"
	case errors.Is(err, identity.ErrInvalidIssuer),
		errors.Is(err, identity.ErrInvalidAudience),
		errors.Is(err, identity.ErrInvalidToken):
		message = "Invalid token"
	}

	return c.JSON(http.StatusUnauthorized, map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// GetExternalID extracts the identity provider's user ID from the echo context.
func GetExternalID(c echo.Context) string {
	if id, ok := c.Get(string(ContextKeyExternalID)).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the full verified claims from the echo context.
func GetClaims(c echo.Context) *identity.Claims {
	if claims, ok := c.Get(string(ContextKeyClaims)).(*identity.Claims); ok {
		return claims
	}
	return nil
}
