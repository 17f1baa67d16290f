// Package main provides the API server entry point.
package main

import (
	"github.com/labstack/echo/v4"

	"github.com/lizachat/liza/internal/infrastructure/httpserver"
	"github.com/lizachat/liza/internal/middleware"
)

// SetupRoutes configures all API routes and middleware chains.
func SetupRoutes(c *Container) *httpserver.Router {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	var rateLimitMiddleware echo.MiddlewareFunc
	if c.Config.RateLimit.Enabled {
		rateLimitConfig := middleware.DefaultRateLimitConfig()
		rateLimitConfig.Logger = c.Logger
		rateLimitConfig.Store = c.RateLimits
		rateLimitConfig.Limit = c.Config.RateLimit.Limit
		rateLimitConfig.Window = c.Config.RateLimit.Window
		rateLimitMiddleware = middleware.RateLimit(rateLimitConfig)
	}

	routerConfig := httpserver.RouterConfig{
		Logger: c.Logger,
		AuthMiddleware: middleware.Auth(middleware.AuthConfig{
			Logger:   c.Logger,
			Verifier: c.Verifier,
		}),
		RateLimitMiddleware: rateLimitMiddleware,
		CORSConfig:          middleware.DefaultCORSConfig(),
		LoggingConfig:       middleware.LoggingConfig{Logger: c.Logger, SkipPaths: []string{"/healthz", "/readyz", "/metrics"}},
		RecoveryConfig:      middleware.RecoveryConfig{Logger: c.Logger, StackSize: middleware.DefaultStackSize},
		APIPrefix:           "/api/v1",
	}

	router := httpserver.NewRouter(e, routerConfig)

	// Container implements httpserver.HealthChecker.
	router.RegisterHealthEndpoints(c)
	router.RegisterMetricsEndpoint()

	router.RegisterAll(
		c.DirectoryHandler,
		c.SessionHandler,
		c.ChannelHandler,
	)

	if c.Config.IsDevelopment() {
		router.PrintRoutes()
	}

	return router
}
