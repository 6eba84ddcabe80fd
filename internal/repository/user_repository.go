package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/freelance-gateway/internal/model"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories use. Repos built
// over a transaction participate in it transparently.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type UserRepo struct{ DB DBTX }

func NewUserRepo(db DBTX) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "user_id,email,display_name,user_type,password_hash,email_verified,last_login,created_at,updated_at"

// Create inserts a user row. The email is normalized; a duplicate-key
// violation (MySQL error 1062) maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (user_id, email, display_name, user_type, password_hash, email_verified) VALUES (?,?,?,?,?,?)",
		u.UserID, u.Email, u.DisplayName, string(u.UserType), u.PasswordHash, u.EmailVerified)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, userID string) (model.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE user_id=? LIMIT 1", userID))
}

// TouchLastLogin stamps a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=NOW(), updated_at=NOW() WHERE user_id=?", userID)
	return err
}

func (r *UserRepo) scanUser(row *sql.Row) (model.User, error) {
	var (
		u         model.User
		userType  string
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.UserID, &u.Email, &u.DisplayName, &userType, &u.PasswordHash,
		&u.EmailVerified, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.UserType = model.UserType(userType)
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return u, nil
}
