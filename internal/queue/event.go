// Package queue defines message payloads exchanged over the message broker.
package queue

// AuthEvent is published after an authentication attempt is recorded. It
// carries enough information for downstream consumers to log, alert on
// repeated failures, or feed analytics without querying the primary database.
type AuthEvent struct {
	EventType string `json:"event_type"` // register | login | failed_login | token_refresh | logout
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	At        string `json:"at"` // RFC3339 UTC timestamp
}
