package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/freelance-gateway/internal/metrics"
)

// MetricsHandler exposes the outbound-call counters as a JSON snapshot.
type MetricsHandler struct {
	Registry *metrics.Registry
}

func NewMetricsHandler(r *metrics.Registry) *MetricsHandler {
	return &MetricsHandler{Registry: r}
}

func (h *MetricsHandler) Snapshot(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"collected_at": time.Now().UTC(),
		"calls":        h.Registry.Snapshot(),
	})
}
