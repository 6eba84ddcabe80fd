package model

import "time"

// Audit event types. Every auth attempt, success or failure, appends exactly
// one row with one of these.
const (
    AuditRegister     = "register"
    AuditLogin        = "login"
    AuditFailedLogin  = "failed_login"
    AuditTokenRefresh = "token_refresh"
    AuditLogout       = "logout"
)

// AuditEntry mirrors the 'auth_audit_log' table. UserID is empty when the
// attempt could not be tied to an account (e.g. login with unknown email).
type AuditEntry struct {
    LogID        string
    UserID       string
    EventType    string
    IPAddress    string
    UserAgent    string
    Success      bool
    ErrorMessage string
    CreatedAt    time.Time
}
