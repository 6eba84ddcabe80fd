package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // HTTP status codes for responses
    "strings"  // prefix checking and trimming for the Authorization header

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware

    "github.com/iliyamo/freelance-gateway/internal/auth"
    "github.com/iliyamo/freelance-gateway/internal/model"
)

// Context keys set by the auth middleware for downstream handlers.
const (
    CtxUserID      = "user_id"
    CtxEmail       = "email"
    CtxUserType    = "user_type"
    CtxAccessToken = "access_token"
)

// Identity resolves the caller's identity without enforcing it. When a
// bearer access token is present and verifies, the claims land in the
// request context; otherwise the request stays anonymous. It runs before
// the rate limiter so the limiter keys on the authenticated identity, and
// it deliberately skips the blacklist lookup: this is the cheap local
// check, enforcement happens in RequireAuth.
func Identity(engine *auth.Engine) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw, ok := bearerToken(c); ok {
                if claims, err := engine.Verify(raw); err == nil && claims.TokenKind == model.TokenKindAccess {
                    setClaims(c, raw, claims)
                }
            }
            return next(c)
        }
    }
}

// RequireAuth enforces a valid, non-revoked bearer access token. The order
// matters: signature and expiry are checked locally first, the blacklist
// round trip runs only for tokens that already verify. A failed blacklist
// lookup is treated conservatively as unauthenticated.
func RequireAuth(engine *auth.Engine) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearerToken(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims, err := engine.Verify(raw)
            if err != nil || claims.TokenKind != model.TokenKindAccess {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            revoked, err := engine.IsBlacklisted(c.Request().Context(), raw)
            if err != nil || revoked {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token revoked"})
            }
            setClaims(c, raw, claims)
            return next(c)
        }
    }
}

// RequireUserType returns middleware enforcing that the authenticated user
// has one of the given types. It assumes RequireAuth already ran.
func RequireUserType(types ...model.UserType) echo.MiddlewareFunc {
    allowed := make(map[model.UserType]bool, len(types))
    for _, t := range types {
        allowed[t] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v, ok := c.Get(CtxUserType).(model.UserType)
            if !ok || !allowed[v] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(c echo.Context) (string, bool) {
    h := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(h, "Bearer ") {
        return "", false
    }
    raw := strings.TrimPrefix(h, "Bearer ")
    return raw, raw != ""
}

func setClaims(c echo.Context, raw string, claims model.TokenClaims) {
    c.Set(CtxUserID, claims.UserID)
    c.Set(CtxEmail, claims.Email)
    c.Set(CtxUserType, claims.UserType)
    c.Set(CtxAccessToken, raw)
}
