package middleware

import (
    "math"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/freelance-gateway/internal/limiter"
)

// RateLimit returns the admission-control middleware. The client key is the
// authenticated identity when Identity resolved one, else the caller's IP,
// which is why this middleware must run after Identity in the chain. Health
// endpoints bypass limiting so probes keep working during load shedding.
func RateLimit(l *limiter.FixedWindow, enabled bool) echo.MiddlewareFunc {
    if !enabled || l == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            path := c.Request().URL.Path
            if path == "/healthz" || strings.HasPrefix(path, "/health") {
                return next(c)
            }

            d := l.Admit(c.Request().Context(), clientKey(c))

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(l.MaxRequests()))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

            if !d.Allowed {
                secs := int(math.Ceil(d.RetryAfter.Seconds()))
                if secs < 0 { secs = 0 }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "rate limit exceeded",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

// clientKey scopes the limiter: user:{user_id} for authenticated callers,
// ip:{client_ip} otherwise.
func clientKey(c echo.Context) string {
    if v, ok := c.Get(CtxUserID).(string); ok && v != "" {
        return "user:" + v
    }
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    return "ip:" + ip
}
