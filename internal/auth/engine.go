package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/freelance-gateway/internal/config"
	"github.com/iliyamo/freelance-gateway/internal/model"
	"github.com/iliyamo/freelance-gateway/internal/queue"
	"github.com/iliyamo/freelance-gateway/internal/repository"
	"github.com/iliyamo/freelance-gateway/internal/utils"
)

// EventPublisher fans auth events out to the message broker. Publishing is
// best-effort; the engine only logs failures.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AuthEvent) error
}

// Engine implements the token/session lifecycle over an AuthStore. All
// collaborators are injected at startup; the engine holds no lazily
// constructed state.
type Engine struct {
	cfg    config.Config
	store  repository.AuthStore
	events EventPublisher // may be nil
	log    *zap.Logger
	now    func() time.Time
}

func NewEngine(cfg config.Config, store repository.AuthStore, events EventPublisher, log *zap.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		store:  store,
		events: events,
		log:    log.With(zap.String("component", "auth_engine")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RegisterParams carries the registration request.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
	UserType    model.UserType
	IP          string
	UserAgent   string
}

// Register creates a user, issues a token pair and persists the session as
// one atomic unit. The password policy runs before any persistence.
func (e *Engine) Register(ctx context.Context, p RegisterParams) (model.UserView, model.TokenPair, error) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if !p.UserType.Valid() {
		return model.UserView{}, model.TokenPair{}, &InputError{Field: "user_type", Reason: "must be CLIENT, DEVELOPER or ADMIN"}
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		return model.UserView{}, model.TokenPair{}, &InputError{Field: "display_name", Reason: "cannot be empty"}
	}
	if err := utils.ValidatePasswordStrength(p.Password); err != nil {
		return model.UserView{}, model.TokenPair{}, &InputError{Field: "password", Reason: err.Error()}
	}

	hash, err := utils.HashPassword(p.Password, e.cfg.BcryptCost)
	if err != nil {
		return model.UserView{}, model.TokenPair{}, err
	}

	now := e.now()
	user := model.User{
		UserID:       uuid.NewString(),
		Email:        p.Email,
		DisplayName:  strings.TrimSpace(p.DisplayName),
		UserType:     p.UserType,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	view := user.View()

	pair, access, refresh, err := e.issuePair(view)
	if err != nil {
		return model.UserView{}, model.TokenPair{}, err
	}

	err = e.store.ExecTx(ctx, func(s repository.AuthStore) error {
		if err := s.CreateUser(ctx, &user); err != nil {
			return err
		}
		if err := s.CreateSession(ctx, e.newSession(view.UserID, access, refresh, p.IP, p.UserAgent)); err != nil {
			return err
		}
		e.appendAudit(ctx, s, view.UserID, model.AuditRegister, p.IP, p.UserAgent, true, "")
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			e.log.Warn("registration rejected", zap.String("email", p.Email), zap.String("cause", "duplicate email"))
			e.appendAudit(ctx, e.store, "", model.AuditRegister, p.IP, p.UserAgent, false, "duplicate email")
			return model.UserView{}, model.TokenPair{}, ErrAlreadyExists
		}
		return model.UserView{}, model.TokenPair{}, err
	}

	e.log.Info("user registered", zap.String("user_id", view.UserID), zap.String("user_type", string(view.UserType)))
	e.publish(ctx, model.AuditRegister, view.UserID, view.Email, p.IP, true, "")
	return view, pair, nil
}

// LoginParams carries the login request.
type LoginParams struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// Login authenticates a user and mints a fresh token pair. Unknown email,
// missing password hash and password mismatch all surface the same external
// error.
func (e *Engine) Login(ctx context.Context, p LoginParams) (model.UserView, model.TokenPair, error) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	user, err := e.store.GetUserByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserView{}, model.TokenPair{}, e.failLogin(ctx, "", p, "user not found")
		}
		return model.UserView{}, model.TokenPair{}, err
	}
	if user.PasswordHash == "" {
		return model.UserView{}, model.TokenPair{}, e.failLogin(ctx, user.UserID, p, "no password set")
	}
	if !utils.VerifyPassword(user.PasswordHash, p.Password) {
		return model.UserView{}, model.TokenPair{}, e.failLogin(ctx, user.UserID, p, "invalid password")
	}

	now := e.now()
	user.LastLogin = &now
	view := user.View()

	pair, access, refresh, err := e.issuePair(view)
	if err != nil {
		return model.UserView{}, model.TokenPair{}, err
	}

	err = e.store.ExecTx(ctx, func(s repository.AuthStore) error {
		if err := s.TouchLastLogin(ctx, view.UserID); err != nil {
			return err
		}
		if err := s.CreateSession(ctx, e.newSession(view.UserID, access, refresh, p.IP, p.UserAgent)); err != nil {
			return err
		}
		e.appendAudit(ctx, s, view.UserID, model.AuditLogin, p.IP, p.UserAgent, true, "")
		return nil
	})
	if err != nil {
		return model.UserView{}, model.TokenPair{}, err
	}

	e.log.Info("user logged in", zap.String("user_id", view.UserID))
	e.publish(ctx, model.AuditLogin, view.UserID, view.Email, p.IP, true, "")
	return view, pair, nil
}

// failLogin records a failed attempt with its internal cause and returns the
// cause-free external error.
func (e *Engine) failLogin(ctx context.Context, userID string, p LoginParams, cause string) error {
	e.log.Warn("login rejected", zap.String("email", p.Email), zap.String("cause", cause))
	e.appendAudit(ctx, e.store, userID, model.AuditFailedLogin, p.IP, p.UserAgent, false, cause)
	e.publish(ctx, model.AuditFailedLogin, userID, p.Email, p.IP, false, cause)
	return ErrInvalidCredentials
}

// Refresh exchanges a valid refresh token for a new pair. Blacklisted
// refresh tokens are rejected up front: presenting a rotated refresh token
// again is an attack signal, not a race. The session row is rotated in
// place, its hashes, expiries and ip overwritten, and the old refresh token
// is blacklisted. The old access token is left to expire on its own.
func (e *Engine) Refresh(ctx context.Context, refreshToken, ip string) (model.TokenPair, error) {
	claims, err := utils.VerifyToken(e.cfg.JWTSecret, refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return model.TokenPair{}, ErrExpired
		}
		return model.TokenPair{}, ErrInvalidToken
	}
	if claims.TokenKind != model.TokenKindRefresh {
		return model.TokenPair{}, ErrInvalidToken
	}

	oldHash := utils.HashToken(refreshToken)
	revoked, err := e.store.IsBlacklisted(ctx, oldHash)
	if err != nil {
		return model.TokenPair{}, err
	}
	if revoked {
		e.log.Warn("revoked refresh token presented", zap.String("user_id", claims.UserID))
		return model.TokenPair{}, ErrInvalidToken
	}

	session, err := e.store.GetSessionByRefreshHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TokenPair{}, ErrInvalidToken
		}
		return model.TokenPair{}, err
	}
	if session.RefreshExpiresAt.Before(e.now()) {
		return model.TokenPair{}, ErrExpired
	}

	user, err := e.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TokenPair{}, ErrInvalidToken
		}
		return model.TokenPair{}, err
	}
	view := user.View()

	pair, access, refresh, err := e.issuePair(view)
	if err != nil {
		return model.TokenPair{}, err
	}

	err = e.store.ExecTx(ctx, func(s repository.AuthStore) error {
		if err := s.RotateSession(ctx, oldHash, utils.HashToken(access.Token), utils.HashToken(refresh.Token), access.Exp, refresh.Exp, ip); err != nil {
			return err
		}
		if err := s.InsertBlacklist(ctx, model.BlacklistEntry{
			TokenHash: oldHash,
			UserID:    view.UserID,
			ExpiresAt: session.RefreshExpiresAt,
			Reason:    "rotated",
		}); err != nil {
			return err
		}
		e.appendAudit(ctx, s, view.UserID, model.AuditTokenRefresh, ip, "", true, "")
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost a concurrent rotation of the same token.
			return model.TokenPair{}, ErrInvalidToken
		}
		return model.TokenPair{}, err
	}

	e.publish(ctx, model.AuditTokenRefresh, view.UserID, view.Email, ip, true, "")
	return pair, nil
}

// Logout blacklists the access token and, when provided, the refresh token,
// then deactivates the session. An already-expired access token still
// decodes its claims and logs out fine; only a broken signature or structure
// is rejected. Repeating logout with the same tokens is a no-op success.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := utils.DecodeToken(e.cfg.JWTSecret, accessToken)
	if err != nil {
		return ErrInvalidToken
	}

	accessHash := utils.HashToken(accessToken)
	accessExp := claims.ExpiresAt
	if accessExp.IsZero() {
		accessExp = e.now().Add(time.Duration(e.cfg.AccessTTLMin) * time.Minute)
	}

	err = e.store.ExecTx(ctx, func(s repository.AuthStore) error {
		if err := s.InsertBlacklist(ctx, model.BlacklistEntry{
			TokenHash: accessHash,
			UserID:    claims.UserID,
			ExpiresAt: accessExp,
			Reason:    "logout",
		}); err != nil {
			return err
		}
		if refreshToken != "" {
			refreshExp := e.now().Add(time.Duration(e.cfg.RefreshTTLDays) * 24 * time.Hour)
			if rc, err := utils.DecodeToken(e.cfg.JWTSecret, refreshToken); err == nil && !rc.ExpiresAt.IsZero() {
				refreshExp = rc.ExpiresAt
			}
			if err := s.InsertBlacklist(ctx, model.BlacklistEntry{
				TokenHash: utils.HashToken(refreshToken),
				UserID:    claims.UserID,
				ExpiresAt: refreshExp,
				Reason:    "logout",
			}); err != nil {
				return err
			}
		}
		if err := s.DeactivateSessionByAccessHash(ctx, accessHash); err != nil {
			return err
		}
		e.appendAudit(ctx, s, claims.UserID, model.AuditLogout, "", "", true, "")
		return nil
	})
	if err != nil {
		return err
	}

	e.publish(ctx, model.AuditLogout, claims.UserID, claims.Email, "", true, "")
	return nil
}

// Verify is a pure signature/expiry check returning the token's claims. It
// consults neither the session store nor the blacklist: callers needing
// revocation awareness pair it with IsBlacklisted so the cheap local check
// can short-circuit before any store round trip.
func (e *Engine) Verify(token string) (model.TokenClaims, error) {
	claims, err := utils.VerifyToken(e.cfg.JWTSecret, token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return model.TokenClaims{}, ErrExpired
		}
		return model.TokenClaims{}, ErrInvalidToken
	}
	return claims, nil
}

// IsBlacklisted reports whether a non-expired blacklist entry exists for the
// token's hash.
func (e *Engine) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return e.store.IsBlacklisted(ctx, utils.HashToken(token))
}

// GetUser loads the user view for /auth/me. ErrUserNotFound signals a token
// whose user row has since been deleted.
func (e *Engine) GetUser(ctx context.Context, userID string) (model.UserView, error) {
	user, err := e.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserView{}, ErrUserNotFound
		}
		return model.UserView{}, err
	}
	return user.View(), nil
}

// issuePair mints a signed access/refresh pair for a user.
func (e *Engine) issuePair(u model.UserView) (model.TokenPair, utils.SignedToken, utils.SignedToken, error) {
	access, err := utils.NewSignedToken(e.cfg.JWTSecret, u, model.TokenKindAccess,
		time.Duration(e.cfg.AccessTTLMin)*time.Minute)
	if err != nil {
		return model.TokenPair{}, utils.SignedToken{}, utils.SignedToken{}, err
	}
	refresh, err := utils.NewSignedToken(e.cfg.JWTSecret, u, model.TokenKindRefresh,
		time.Duration(e.cfg.RefreshTTLDays)*24*time.Hour)
	if err != nil {
		return model.TokenPair{}, utils.SignedToken{}, utils.SignedToken{}, err
	}
	pair := model.TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    "bearer",
		ExpiresIn:    e.cfg.AccessTTLMin * 60,
	}
	return pair, access, refresh, nil
}

// newSession builds the session row for a freshly minted pair. Only hashes
// of the tokens are stored.
func (e *Engine) newSession(userID string, access, refresh utils.SignedToken, ip, userAgent string) *model.Session {
	return &model.Session{
		SessionID:        uuid.NewString(),
		UserID:           userID,
		AccessTokenHash:  utils.HashToken(access.Token),
		RefreshTokenHash: utils.HashToken(refresh.Token),
		ExpiresAt:        access.Exp,
		RefreshExpiresAt: refresh.Exp,
		IPAddress:        ip,
		UserAgent:        userAgent,
		IsActive:         true,
		CreatedAt:        e.now(),
	}
}

// appendAudit writes one audit row. Audit failures never fail the parent
// operation; they are logged and swallowed.
func (e *Engine) appendAudit(ctx context.Context, s repository.AuthStore, userID, eventType, ip, userAgent string, success bool, errMsg string) {
	entry := model.AuditEntry{
		LogID:        uuid.NewString(),
		UserID:       userID,
		EventType:    eventType,
		IPAddress:    ip,
		UserAgent:    userAgent,
		Success:      success,
		ErrorMessage: errMsg,
	}
	if err := s.AppendAudit(ctx, entry); err != nil {
		e.log.Error("audit append failed", zap.String("event_type", eventType), zap.Error(err))
	}
}

// publish fans the event out to the broker, best-effort.
func (e *Engine) publish(ctx context.Context, eventType, userID, email, ip string, success bool, reason string) {
	if e.events == nil {
		return
	}
	_ = e.events.Publish(ctx, queue.AuthEvent{
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		IPAddress: ip,
		Success:   success,
		Reason:    reason,
		At:        e.now().Format(time.RFC3339),
	})
}
