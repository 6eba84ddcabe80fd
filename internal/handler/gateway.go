package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/freelance-gateway/internal/client"
	"github.com/iliyamo/freelance-gateway/internal/middleware"
)

// GatewayHandler routes authenticated requests to the backend services via
// the typed clients. Backend failures surface as 503 so callers can tell a
// gateway rejection from a backend outage.
type GatewayHandler struct {
	Users    *client.UserServiceClient
	Tasks    *client.TaskServiceClient
	Recs     *client.RecommendationServiceClient
	Presence *client.PresenceServiceClient
}

func NewGatewayHandler(users *client.UserServiceClient, tasks *client.TaskServiceClient, recs *client.RecommendationServiceClient, presence *client.PresenceServiceClient) *GatewayHandler {
	return &GatewayHandler{Users: users, Tasks: tasks, Recs: recs, Presence: presence}
}

// backendError maps client-layer errors onto HTTP status codes.
func backendError(err error) error {
	var unavailable *client.UnavailableError
	switch {
	case errors.Is(err, client.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.As(err, &unavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, unavailable.Service+" is unavailable")
	default:
		return echo.NewHTTPError(http.StatusBadGateway, "upstream error")
	}
}

func callerID(c echo.Context) string {
	id, _ := c.Get(middleware.CtxUserID).(string)
	return id
}

// ---- profiles ----

func (h *GatewayHandler) GetProfile(c echo.Context) error {
	p, err := h.Users.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendError(err)
	}
	return c.JSON(http.StatusOK, p)
}

type updateProfileReq struct {
	DisplayName string   `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio         string   `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Skills      []string `json:"skills,omitempty" validate:"omitempty,dive,min=1"`
	HourlyRate  float64  `json:"hourly_rate,omitempty" validate:"omitempty,gte=0"`
}

// UpdateProfile only ever writes to the caller's own profile; the user id
// comes from the verified token, never from the body.
func (h *GatewayHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.Users.UpdateProfile(c.Request().Context(), client.UpdateProfileRequest{
		UserID:      callerID(c),
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Skills:      req.Skills,
		HourlyRate:  req.HourlyRate,
	})
	if err != nil {
		return backendError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// ---- tasks ----

type createTaskReq struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Budget      float64 `json:"budget,omitempty" validate:"omitempty,gt=0"`
}

func (h *GatewayHandler) CreateTask(c echo.Context) error {
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := h.Tasks.CreateTask(c.Request().Context(), client.CreateTaskRequest{
		ClientID:    callerID(c),
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
	})
	if err != nil {
		return backendError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *GatewayHandler) GetTask(c echo.Context) error {
	t, err := h.Tasks.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *GatewayHandler) ListTasks(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	tasks, err := h.Tasks.ListTasks(c.Request().Context(), client.ListTasksRequest{
		ClientID: c.QueryParam("client_id"),
		Status:   c.QueryParam("status"),
		Limit:    limit,
	})
	if err != nil {
		return backendError(err)
	}
	if tasks == nil {
		tasks = []client.Task{}
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

// ---- recommendations ----

func (h *GatewayHandler) GetRecommendations(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}
	recs, err := h.Recs.GetRecommendations(c.Request().Context(), callerID(c), limit)
	if err != nil {
		return backendError(err)
	}
	if recs == nil {
		recs = []client.Recommendation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"recommendations": recs})
}

// ---- presence ----

func (h *GatewayHandler) GetPresence(c echo.Context) error {
	p, err := h.Presence.GetPresence(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendError(err)
	}
	return c.JSON(http.StatusOK, p)
}
