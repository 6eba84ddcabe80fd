package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/freelance-gateway/internal/model"
)

// SessionRepo persists issued token pairs. One row per token-pair generation
// event; refresh rotates the hashes in place rather than inserting.
type SessionRepo struct{ DB DBTX }

func NewSessionRepo(db DBTX) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row holding the hashes of a freshly minted pair.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_sessions
		 (session_id, user_id, access_token_hash, refresh_token_hash, expires_at, refresh_expires_at, ip_address, user_agent, is_active)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		s.SessionID, s.UserID, s.AccessTokenHash, s.RefreshTokenHash,
		s.ExpiresAt, s.RefreshExpiresAt, s.IPAddress, s.UserAgent, s.IsActive)
	return err
}

// GetByRefreshHash returns the active session owning a refresh token hash.
// sql.ErrNoRows means the hash is unknown or the session was deactivated.
func (r *SessionRepo) GetByRefreshHash(ctx context.Context, refreshHash string) (model.Session, error) {
	var (
		s         model.Session
		userAgent sql.NullString
		ipAddress sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT session_id, user_id, access_token_hash, refresh_token_hash, expires_at, refresh_expires_at, ip_address, user_agent, is_active, created_at
		 FROM user_sessions WHERE refresh_token_hash=? AND is_active=TRUE LIMIT 1`,
		refreshHash).Scan(&s.SessionID, &s.UserID, &s.AccessTokenHash, &s.RefreshTokenHash,
		&s.ExpiresAt, &s.RefreshExpiresAt, &ipAddress, &userAgent, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return model.Session{}, err
	}
	s.IPAddress = ipAddress.String
	s.UserAgent = userAgent.String
	return s, nil
}

// Rotate overwrites a session's hashes, expiries and ip after a refresh. The
// row identity is the old refresh hash so a concurrent rotation of the same
// token can only win once.
func (r *SessionRepo) Rotate(ctx context.Context, oldRefreshHash, accessHash, refreshHash string, expiresAt, refreshExpiresAt time.Time, ip string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE user_sessions
		 SET access_token_hash=?, refresh_token_hash=?, expires_at=?, refresh_expires_at=?, ip_address=?
		 WHERE refresh_token_hash=? AND is_active=TRUE`,
		accessHash, refreshHash, expiresAt, refreshExpiresAt, ip, oldRefreshHash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeactivateByAccessHash logically ends the session holding an access token
// hash. Already-inactive rows are a no-op, keeping logout idempotent.
func (r *SessionRepo) DeactivateByAccessHash(ctx context.Context, accessHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user_sessions SET is_active=FALSE WHERE access_token_hash=?", accessHash)
	return err
}
