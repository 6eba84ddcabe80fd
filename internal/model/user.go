package model // package model defines the persistent data structures of the gateway

import "time"

// UserType classifies an account. The gateway only performs coarse
// type-based checks; fine-grained policy lives in the backend services.
type UserType string

const (
    UserTypeClient    UserType = "CLIENT"
    UserTypeDeveloper UserType = "DEVELOPER"
    UserTypeAdmin     UserType = "ADMIN"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
    switch t {
    case UserTypeClient, UserTypeDeveloper, UserTypeAdmin:
        return true
    }
    return false
}

// User mirrors the 'users' table. PasswordHash never leaves the repository
// layer; UserView is the outward-facing shape.
type User struct {
    UserID        string
    Email         string
    DisplayName   string
    UserType      UserType
    PasswordHash  string
    EmailVerified bool
    LastLogin     *time.Time
    CreatedAt     time.Time
    UpdatedAt     time.Time
}

// UserView is the representation of a user returned to API callers.
type UserView struct {
    UserID        string     `json:"user_id"`
    Email         string     `json:"email"`
    DisplayName   string     `json:"display_name"`
    UserType      UserType   `json:"user_type"`
    EmailVerified bool       `json:"email_verified"`
    LastLogin     *time.Time `json:"last_login,omitempty"`
    CreatedAt     time.Time  `json:"created_at"`
    UpdatedAt     time.Time  `json:"updated_at"`
}

// View strips the credential material from a User.
func (u User) View() UserView {
    return UserView{
        UserID:        u.UserID,
        Email:         u.Email,
        DisplayName:   u.DisplayName,
        UserType:      u.UserType,
        EmailVerified: u.EmailVerified,
        LastLogin:     u.LastLogin,
        CreatedAt:     u.CreatedAt,
        UpdatedAt:     u.UpdatedAt,
    }
}
