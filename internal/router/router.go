package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/freelance-gateway/internal/auth"
	"github.com/iliyamo/freelance-gateway/internal/handler"
	"github.com/iliyamo/freelance-gateway/internal/limiter"
	"github.com/iliyamo/freelance-gateway/internal/middleware"
	"github.com/iliyamo/freelance-gateway/internal/model"
)

// RegisterGlobal wires the middleware every request passes through. Identity
// runs first so the rate limiter can key on the authenticated user instead
// of the client IP; the limiter itself skips the health paths.
func RegisterGlobal(e *echo.Echo, engine *auth.Engine, l *limiter.FixedWindow, limitEnabled bool) {
	e.Use(middleware.Identity(engine))
	e.Use(middleware.RateLimit(l, limitEnabled))
}

// RegisterOps registers the operational endpoints: liveness, per-backend
// health and the outbound-call metrics snapshot. None of these require
// authentication.
func RegisterOps(e *echo.Echo, health *handler.HealthHandler, metrics *handler.MetricsHandler) {
	// Load balancers and monitoring systems hit /healthz to verify the
	// gateway process itself is up.
	e.GET("/healthz", handler.Health)
	// /health/services additionally probes every backend dependency and
	// reports the breaker position for each.
	e.GET("/health/services", health.Services)
	e.GET("/metrics", metrics.Snapshot)
}

// RegisterAuth registers all authentication-related routes. Unauthenticated
// operations live under /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, engine *auth.Engine) {
	// Operations that do not require an existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; the old one is revoked.
	g.POST("/refresh", a.Refresh)
	// Logout accepts an expired access token on purpose: a caller must
	// always be able to end their session.
	g.POST("/logout", a.Logout)

	// Routes that require a valid, non-revoked access token.
	protected := e.Group("/v1/auth")
	protected.Use(middleware.RequireAuth(engine))
	protected.GET("/me", a.Me)
}

// RegisterGateway registers the authenticated pass-through routes to the
// backend services. Role checks are applied per route group.
func RegisterGateway(e *echo.Echo, g *handler.GatewayHandler, engine *auth.Engine) {
	v1 := e.Group("/v1")
	v1.Use(middleware.RequireAuth(engine))

	// Profiles: any authenticated user may read; writes only touch the
	// caller's own profile.
	v1.GET("/users/:id/profile", g.GetProfile)
	v1.PUT("/users/me/profile", g.UpdateProfile)

	// Tasks: creating is reserved for clients (and admins), reading is open
	// to any authenticated user.
	v1.GET("/tasks", g.ListTasks)
	v1.GET("/tasks/:id", g.GetTask)
	v1.POST("/tasks", g.CreateTask,
		middleware.RequireUserType(model.UserTypeClient, model.UserTypeAdmin))

	// Recommendations are computed for developers looking for work.
	v1.GET("/recommendations", g.GetRecommendations,
		middleware.RequireUserType(model.UserTypeDeveloper, model.UserTypeAdmin))

	// Presence of another user, e.g. to show an online badge.
	v1.GET("/users/:id/presence", g.GetPresence)
}
