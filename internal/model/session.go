package model

import "time"

// Session mirrors the 'user_sessions' table. Exactly one row exists per
// token-pair generation event (register, login); a refresh overwrites the
// hashes and expiries of the existing row instead of inserting a new one.
// Raw tokens are never stored, only their SHA-256 hashes.
type Session struct {
    SessionID        string
    UserID           string
    AccessTokenHash  string
    RefreshTokenHash string
    ExpiresAt        time.Time
    RefreshExpiresAt time.Time
    IPAddress        string
    UserAgent        string
    IsActive         bool
    CreatedAt        time.Time
}

// BlacklistEntry mirrors the 'token_blacklist' table. A token is revoked iff
// a non-expired entry exists for its hash. token_hash is the primary key, so
// repeated inserts for the same token are no-ops.
type BlacklistEntry struct {
    TokenHash string
    UserID    string
    ExpiresAt time.Time
    Reason    string
}
