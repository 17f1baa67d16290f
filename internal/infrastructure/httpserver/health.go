package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health status constants.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
)

// ComponentStatus represents the health status of a single component.
type ComponentStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the response for health endpoints.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components []ComponentStatus `json:"components,omitempty"`
}

// HealthChecker reports whether infrastructure collaborators are reachable.
type HealthChecker interface {
	// IsReady checks whether all collaborators are ready to serve traffic.
	IsReady(ctx context.Context) bool

	// GetHealthStatus returns per-component status.
	GetHealthStatus(ctx context.Context) []ComponentStatus
}

// RegisterHealthEndpoints registers liveness and readiness probes.
//
//   - GET /healthz — liveness, always 200 while the process runs
//   - GET /readyz  — readiness, 503 until all collaborators respond
func (r *Router) RegisterHealthEndpoints(checker HealthChecker) {
	r.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{Status: StatusHealthy})
	})

	r.echo.GET("/readyz", func(c echo.Context) error {
		ctx := c.Request().Context()

		var components []ComponentStatus
		if checker != nil {
			components = checker.GetHealthStatus(ctx)
		}

		if checker == nil || checker.IsReady(ctx) {
			return c.JSON(http.StatusOK, HealthResponse{
				Status:     StatusReady,
				Components: components,
			})
		}

		return c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:     StatusNotReady,
			Components: components,
		})
	})
}
