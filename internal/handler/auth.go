package handler

import (
    "errors"               // error-kind checks against the auth sentinels
    "net/http"             // HTTP status codes and primitives
    "strings"              // Authorization header handling

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/freelance-gateway/internal/auth"
    "github.com/iliyamo/freelance-gateway/internal/middleware"
    "github.com/iliyamo/freelance-gateway/internal/model"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Engine *auth.Engine
}

func NewAuthHandler(e *auth.Engine) *AuthHandler { return &AuthHandler{Engine: e} }

// ----- DTOs -----

type registerReq struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	UserType    string `json:"user_type" validate:"required"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
}

type authResp struct {
	model.TokenPair
	User model.UserView `json:"user"`
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	view, pair, err := h.Engine.Register(c.Request().Context(), auth.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		UserType:    model.UserType(strings.ToUpper(strings.TrimSpace(req.UserType))),
		IP:          c.RealIP(),
		UserAgent:   c.Request().UserAgent(),
	})
	if err != nil {
		var inputErr *auth.InputError
		switch {
		case errors.As(err, &inputErr):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": inputErr.Reason, "field": inputErr.Field})
		case errors.Is(err, auth.ErrAlreadyExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	return c.JSON(http.StatusCreated, authResp{TokenPair: pair, User: view})
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	view, pair, err := h.Engine.Login(c.Request().Context(), auth.LoginParams{
		Email:     req.Email,
		Password:  req.Password,
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, authResp{TokenPair: pair, User: view})
}

// Refresh: rotate the session's token pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, err := h.Engine.Refresh(c.Request().Context(), strings.TrimSpace(req.RefreshToken), c.RealIP())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpired):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token expired"})
		case errors.Is(err, auth.ErrInvalidToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout: blacklist the bearer access token (and the refresh token when the
// body carries one) and deactivate the session. Safe to repeat.
func (h *AuthHandler) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	accessToken := strings.TrimPrefix(authHeader, "Bearer ")

	// Invalid JSON just leaves the refresh token empty; the access token
	// alone is enough to log out.
	var req logoutReq
	_ = c.Bind(&req)

	err := h.Engine.Logout(c.Request().Context(), accessToken, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me: return the authenticated user's current record.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	view, err := h.Engine.GetUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, view)
}
