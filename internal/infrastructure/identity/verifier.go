// Package identity verifies session tokens issued by the external identity
// provider using its published JWKS. Validation is offline; keys are
// refreshed in the background.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Token verification errors.
var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidClaims   = errors.New("invalid claims")
	ErrMissingSubject  = errors.New("missing subject claim")
	ErrTokenExpired    = errors.New("token expired")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidAudience = errors.New("invalid audience")
	ErrJWKSFetchFailed = errors.New("failed to fetch JWKS")
)

// Claims represents the verified identity asserted by the provider for one
// session. Only Subject is guaranteed; profile fields are best-effort.
type Claims struct {
	Subject      string
	FullName     string
	FirstName    string
	PrimaryEmail string
	AvatarURL    string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// Verifier validates identity provider session tokens.
type Verifier interface {
	// Verify validates the token and returns the asserted identity.
	Verify(ctx context.Context, tokenString string) (*Claims, error)

	// Close stops background JWKS refresh.
	Close() error
}

// VerifierConfig contains configuration for the verifier.
type VerifierConfig struct {
	// IssuerURL is the provider's issuer, e.g. "https://example.clerk.accounts.dev".
	IssuerURL string

	// Audience is the expected audience. Optional.
	Audience string

	Leeway          time.Duration // clock skew tolerance
	RefreshInterval time.Duration // JWKS refresh interval
	Logger          *slog.Logger
}

// Default configuration values.
const (
	DefaultLeeway          = 30 * time.Second
	DefaultRefreshInterval = 1 * time.Hour
)

type verifier struct {
	jwks   keyfunc.Keyfunc
	config VerifierConfig
	logger *slog.Logger
	cancel context.CancelFunc
}

// NewVerifier creates a verifier with JWKS caching against the provider's
// standard well-known endpoint.
func NewVerifier(config VerifierConfig) (Verifier, error) {
	if config.IssuerURL == "" {
		return nil, fmt.Errorf("%w: IssuerURL is required", ErrJWKSFetchFailed)
	}

	if config.Leeway == 0 {
		config.Leeway = DefaultLeeway
	}
	if config.RefreshInterval == 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jwksURL := config.IssuerURL + "/.well-known/jwks.json"

	logger.Info("initializing identity verifier",
		slog.String("jwks_url", jwksURL),
		slog.Duration("refresh_interval", config.RefreshInterval),
	)

	ctx, cancel := context.WithCancel(context.Background())

	storageOpts := jwkset.HTTPClientStorageOptions{
		Ctx:             ctx,
		RefreshInterval: config.RefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("failed to refresh JWKS", slog.Any("error", err))
		},
	}

	storage, err := jwkset.NewStorageFromHTTP(jwksURL, storageOpts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrJWKSFetchFailed, err)
	}

	jwks, err := keyfunc.New(keyfunc.Options{
		Ctx:     ctx,
		Storage: storage,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrJWKSFetchFailed, err)
	}

	return &verifier{
		jwks:   jwks,
		config: config,
		logger: logger,
		cancel: cancel,
	}, nil
}

// Verify validates the token and returns the asserted identity.
func (v *verifier) Verify(_ context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithLeeway(v.config.Leeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(v.config.IssuerURL),
	}
	if v.config.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.config.Audience))
	}

	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc, parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, fmt.Errorf("%w: %w", ErrInvalidIssuer, err)
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, fmt.Errorf("%w: %w", ErrInvalidAudience, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	return extractClaims(mapClaims)
}

// extractClaims pulls the identity fields out of the raw JWT claims.
func extractClaims(claims jwt.MapClaims) (*Claims, error) {
	c := &Claims{}

	c.Subject, _ = claims["sub"].(string)
	if c.Subject == "" {
		return nil, ErrMissingSubject
	}

	c.FullName, _ = claims["name"].(string)
	c.FirstName, _ = claims["first_name"].(string)
	if c.FirstName == "" {
		c.FirstName, _ = claims["given_name"].(string)
	}
	c.PrimaryEmail, _ = claims["email"].(string)
	c.AvatarURL, _ = claims["image_url"].(string)
	if c.AvatarURL == "" {
		c.AvatarURL, _ = claims["picture"].(string)
	}

	if iat, ok := claims["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return c, nil
}

// Close stops background JWKS refresh.
func (v *verifier) Close() error {
	v.logger.Info("closing identity verifier")
	if v.cancel != nil {
		v.cancel()
	}
	return nil
}
