// Package auth orchestrates the token and session lifecycle: register,
// login, refresh, logout, verification and revocation checks.
package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned when registration hits a duplicate email.
	ErrAlreadyExists = errors.New("email already registered")
	// ErrInvalidCredentials covers unknown email, missing password and
	// password mismatch. The three cases are indistinguishable externally so
	// the API leaks no account-enumeration signal; each is logged internally
	// with its specific cause.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, unsigned, wrong-kind and
	// unknown-session tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpired is returned when a token or its session is past expiry.
	ErrExpired = errors.New("token expired")
	// ErrUserNotFound is returned when a verified token references a user
	// row that no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// InputError is a field-scoped, client-correctable validation failure.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
