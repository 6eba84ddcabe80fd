package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/freelance-gateway/internal/config"
	"github.com/iliyamo/freelance-gateway/internal/limiter"
)

func newRateLimitedEcho(t *testing.T, maxRequests int) *echo.Echo {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := config.RateLimitConfig{
		Enabled:     true,
		MaxRequests: maxRequests,
		Window:      time.Minute,
		Prefix:      "ratelimit",
	}
	fw := limiter.NewFixedWindow(rdb, cfg, zap.NewNop())

	e := echo.New()
	e.Use(RateLimit(fw, true))
	e.GET("/v1/tasks", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

func get(e *echo.Echo, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitHeadersAndRejection(t *testing.T) {
	e := newRateLimitedEcho(t, 2)

	rec := get(e, "/v1/tasks", "203.0.113.1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	rec = get(e, "/v1/tasks", "203.0.113.1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = get(e, "/v1/tasks", "203.0.113.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitKeysPerClient(t *testing.T) {
	e := newRateLimitedEcho(t, 1)

	require.Equal(t, http.StatusOK, get(e, "/v1/tasks", "203.0.113.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(e, "/v1/tasks", "203.0.113.1").Code)

	// A different caller has its own window.
	assert.Equal(t, http.StatusOK, get(e, "/v1/tasks", "203.0.113.2").Code)
}

func TestRateLimitSkipsHealthPaths(t *testing.T) {
	e := newRateLimitedEcho(t, 1)

	require.Equal(t, http.StatusOK, get(e, "/v1/tasks", "203.0.113.1").Code)
	require.Equal(t, http.StatusTooManyRequests, get(e, "/v1/tasks", "203.0.113.1").Code)

	// Health probes keep answering even while the caller is shed.
	for i := 0; i < 5; i++ {
		rec := get(e, "/healthz", "203.0.113.1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(nil, false))
	e.GET("/v1/tasks", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	for i := 0; i < 10; i++ {
		rec := get(e, "/v1/tasks", "203.0.113.1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestClientKeyPrefersUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.1")
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "ip:203.0.113.1", clientKey(c))
	c.Set(CtxUserID, "user-1")
	assert.Equal(t, "user:user-1", clientKey(c))
}
