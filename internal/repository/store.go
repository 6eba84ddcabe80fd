package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/freelance-gateway/internal/model"
)

// AuthStore is the persistence contract the auth engine programs against.
// The MySQL Store below implements it; tests substitute an in-memory fake.
// ExecTx runs fn against a store bound to one transaction so multi-write
// flows (registration: user + session + audit) are all-or-nothing.
type AuthStore interface {
	ExecTx(ctx context.Context, fn func(AuthStore) error) error

	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)
	TouchLastLogin(ctx context.Context, userID string) error

	CreateSession(ctx context.Context, s *model.Session) error
	GetSessionByRefreshHash(ctx context.Context, refreshHash string) (model.Session, error)
	RotateSession(ctx context.Context, oldRefreshHash, accessHash, refreshHash string, expiresAt, refreshExpiresAt time.Time, ip string) error
	DeactivateSessionByAccessHash(ctx context.Context, accessHash string) error

	InsertBlacklist(ctx context.Context, e model.BlacklistEntry) error
	IsBlacklisted(ctx context.Context, tokenHash string) (bool, error)

	AppendAudit(ctx context.Context, e model.AuditEntry) error
}

// Store aggregates the repositories over one database handle.
type Store struct {
	db        *sql.DB // nil when the store is transaction-bound
	Users     *UserRepo
	Sessions  *SessionRepo
	Blacklist *BlacklistRepo
	Audit     *AuditRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		Users:     NewUserRepo(db),
		Sessions:  NewSessionRepo(db),
		Blacklist: NewBlacklistRepo(db),
		Audit:     NewAuditRepo(db),
	}
}

// withTx returns a copy of the store whose repositories run inside tx.
func (s *Store) withTx(tx *sql.Tx) *Store {
	return &Store{
		Users:     NewUserRepo(tx),
		Sessions:  NewSessionRepo(tx),
		Blacklist: NewBlacklistRepo(tx),
		Audit:     NewAuditRepo(tx),
	}
}

// ExecTx runs fn inside a database transaction. Nested calls are rejected:
// a transaction-bound store has no handle to open another one.
func (s *Store) ExecTx(ctx context.Context, fn func(AuthStore) error) error {
	if s.db == nil {
		return fmt.Errorf("store is already transaction-bound")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(s.withTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %w, rollback err: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	return s.Users.Create(ctx, u)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.Users.GetByEmail(ctx, email)
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	return s.Users.GetByID(ctx, userID)
}

func (s *Store) TouchLastLogin(ctx context.Context, userID string) error {
	return s.Users.TouchLastLogin(ctx, userID)
}

func (s *Store) CreateSession(ctx context.Context, sess *model.Session) error {
	return s.Sessions.Create(ctx, sess)
}

func (s *Store) GetSessionByRefreshHash(ctx context.Context, refreshHash string) (model.Session, error) {
	return s.Sessions.GetByRefreshHash(ctx, refreshHash)
}

func (s *Store) RotateSession(ctx context.Context, oldRefreshHash, accessHash, refreshHash string, expiresAt, refreshExpiresAt time.Time, ip string) error {
	return s.Sessions.Rotate(ctx, oldRefreshHash, accessHash, refreshHash, expiresAt, refreshExpiresAt, ip)
}

func (s *Store) DeactivateSessionByAccessHash(ctx context.Context, accessHash string) error {
	return s.Sessions.DeactivateByAccessHash(ctx, accessHash)
}

func (s *Store) InsertBlacklist(ctx context.Context, e model.BlacklistEntry) error {
	return s.Blacklist.Insert(ctx, e)
}

func (s *Store) IsBlacklisted(ctx context.Context, tokenHash string) (bool, error) {
	return s.Blacklist.IsBlacklisted(ctx, tokenHash)
}

func (s *Store) AppendAudit(ctx context.Context, e model.AuditEntry) error {
	return s.Audit.Append(ctx, e)
}
