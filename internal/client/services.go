package client

import (
	"context"
	"time"
)

// Typed clients, one per backend dependency. Each is a thin layer over the
// shared ServiceClient call path; request and response shapes are defined
// here so route handlers never touch raw transports.

// ---- user service ----

type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	HourlyRate  float64   `json:"hourly_rate,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpdateProfileRequest struct {
	UserID      string   `json:"user_id"`
	DisplayName string   `json:"display_name,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	HourlyRate  float64  `json:"hourly_rate,omitempty"`
}

type UserServiceClient struct{ *ServiceClient }

func NewUserServiceClient(sc *ServiceClient) *UserServiceClient {
	return &UserServiceClient{ServiceClient: sc}
}

func (c *UserServiceClient) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	if err := c.Call(ctx, "GetProfile", map[string]string{"user_id": userID}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *UserServiceClient) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Profile, error) {
	var p Profile
	if err := c.Call(ctx, "UpdateProfile", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ---- task service ----

type Task struct {
	TaskID      string    `json:"task_id"`
	ClientID    string    `json:"client_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Budget      float64   `json:"budget,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateTaskRequest struct {
	ClientID    string  `json:"client_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Budget      float64 `json:"budget,omitempty"`
}

type ListTasksRequest struct {
	ClientID string `json:"client_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type TaskServiceClient struct{ *ServiceClient }

func NewTaskServiceClient(sc *ServiceClient) *TaskServiceClient {
	return &TaskServiceClient{ServiceClient: sc}
}

func (c *TaskServiceClient) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var t Task
	if err := c.Call(ctx, "GetTask", map[string]string{"task_id": taskID}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *TaskServiceClient) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	var t Task
	if err := c.Call(ctx, "CreateTask", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *TaskServiceClient) ListTasks(ctx context.Context, req ListTasksRequest) ([]Task, error) {
	var out struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.Call(ctx, "ListTasks", req, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// ---- recommendation service ----

type Recommendation struct {
	TaskID string  `json:"task_id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}

type RecommendationServiceClient struct{ *ServiceClient }

func NewRecommendationServiceClient(sc *ServiceClient) *RecommendationServiceClient {
	return &RecommendationServiceClient{ServiceClient: sc}
}

func (c *RecommendationServiceClient) GetRecommendations(ctx context.Context, userID string, limit int) ([]Recommendation, error) {
	var out struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	req := map[string]any{"user_id": userID, "limit": limit}
	if err := c.Call(ctx, "GetRecommendations", req, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

// ---- presence service ----

type Presence struct {
	UserID   string    `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen,omitempty"`
}

type PresenceServiceClient struct{ *ServiceClient }

func NewPresenceServiceClient(sc *ServiceClient) *PresenceServiceClient {
	return &PresenceServiceClient{ServiceClient: sc}
}

func (c *PresenceServiceClient) GetPresence(ctx context.Context, userID string) (*Presence, error) {
	var p Presence
	if err := c.Call(ctx, "GetPresence", map[string]string{"user_id": userID}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
