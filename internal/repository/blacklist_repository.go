package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/freelance-gateway/internal/model"
)

// BlacklistRepo persists revoked token hashes. Entries carry the token's own
// expiry so they can be pruned once the token would have died anyway.
type BlacklistRepo struct{ DB DBTX }

func NewBlacklistRepo(db DBTX) *BlacklistRepo { return &BlacklistRepo{DB: db} }

// Insert adds a revocation entry. token_hash is the primary key and the
// ON DUPLICATE KEY clause makes repeated inserts for the same token no-ops,
// which is what keeps logout idempotent.
func (r *BlacklistRepo) Insert(ctx context.Context, e model.BlacklistEntry) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO token_blacklist (token_hash, user_id, expires_at, reason)
		 VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE token_hash=token_hash`,
		e.TokenHash, e.UserID, e.ExpiresAt, e.Reason)
	return err
}

// IsBlacklisted reports whether a non-expired entry exists for the hash.
func (r *BlacklistRepo) IsBlacklisted(ctx context.Context, tokenHash string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM token_blacklist WHERE token_hash=? AND expires_at > NOW() LIMIT 1",
		tokenHash).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
