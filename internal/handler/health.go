package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/freelance-gateway/internal/breaker"
)

// Health responds with a liveness ack. Load balancers hit this path, so it
// stays outside both auth and rate limiting.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Dependency is the view the aggregated health endpoint needs over a
// service client.
type Dependency interface {
	Name() string
	BreakerState() breaker.State
	HealthCheck(ctx context.Context) bool
}

// HealthHandler probes every registered backend and reports reachability
// together with the breaker position.
type HealthHandler struct {
	Deps []Dependency
}

func NewHealthHandler(deps ...Dependency) *HealthHandler {
	return &HealthHandler{Deps: deps}
}

type serviceHealth struct {
	Service string `json:"service"`
	Healthy bool   `json:"healthy"`
	Breaker string `json:"breaker"`
}

// Services handles GET /health/services. The overall status is degraded as
// soon as one backend fails its probe; the response still lists every
// backend so operators see which one.
func (h *HealthHandler) Services(c echo.Context) error {
	ctx := c.Request().Context()
	out := make([]serviceHealth, 0, len(h.Deps))
	allHealthy := true
	for _, d := range h.Deps {
		ok := d.HealthCheck(ctx)
		if !ok {
			allHealthy = false
		}
		out = append(out, serviceHealth{
			Service: d.Name(),
			Healthy: ok,
			Breaker: d.BreakerState().String(),
		})
	}

	status := "ok"
	code := http.StatusOK
	if !allHealthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, echo.Map{"status": status, "services": out})
}
