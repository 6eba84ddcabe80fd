package repository

import (
	"context"

	"github.com/iliyamo/freelance-gateway/internal/model"
)

// AuditRepo appends rows to the auth audit log. Writes are best-effort at the
// call site: a failed audit insert is logged by the caller and never fails
// the parent auth operation.
type AuditRepo struct{ DB DBTX }

func NewAuditRepo(db DBTX) *AuditRepo { return &AuditRepo{DB: db} }

// Append inserts one audit row. user_id may be empty when the attempt could
// not be tied to an account; the column is nullable.
func (r *AuditRepo) Append(ctx context.Context, e model.AuditEntry) error {
	var userID any
	if e.UserID != "" {
		userID = e.UserID
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO auth_audit_log (log_id, user_id, event_type, ip_address, user_agent, success, error_message)
		 VALUES (?,?,?,?,?,?,?)`,
		e.LogID, userID, e.EventType, e.IPAddress, e.UserAgent, e.Success, e.ErrorMessage)
	return err
}
