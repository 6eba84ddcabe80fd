// Package repository persists the gateway's identity state: users, sessions,
// the token blacklist and the auth audit log. Sentinel errors defined here
// let higher layers such as the auth engine distinguish failure scenarios
// without inspecting driver error strings.
package repository

import "errors"

// ErrEmailExists is returned when an insert violates the unique key on
// users.email. Uniqueness is enforced by the store itself, not by a
// check-then-insert, so concurrent registrations with the same email cannot
// both succeed.
var ErrEmailExists = errors.New("email already exists")
