package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/model"
	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/port/driven"
)

// timeLayout matches the acquisition timestamp format the service-facing
// payloads use, so a stored record stays hand-editable.
const timeLayout = "2006-01-02 15:04:05"

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// One row per account; a cleared credential keeps its row with empty
// session/student columns.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by db.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Get retrieves the credential cached for the given account. Returns
// (nil, nil) when no row exists. A row with an unparseable timestamp is
// logged and treated as a cache miss so a hand-edited or corrupt record can
// never block a run.
func (r *CredentialRepo) Get(ctx context.Context, phone string) (*model.Credential, error) {
	const query = `SELECT session_id, student_id, acquired_at FROM credentials WHERE phone = ?`

	var sessionID, studentID, acquiredAt string
	err := r.db.Reader.QueryRowContext(ctx, query, phone).Scan(&sessionID, &studentID, &acquiredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %q: %w", phone, err)
	}

	cred := &model.Credential{
		Phone:     phone,
		SessionID: sessionID,
		StudentID: studentID,
	}

	if acquiredAt != "" {
		ts, err := time.ParseInLocation(timeLayout, acquiredAt, time.Local)
		if err != nil {
			slog.Warn("corrupt credential record, treating as absent",
				"account", phone, "acquired_at", acquiredAt, "error", err)
			return nil, nil
		}
		cred.AcquiredAt = ts
	}

	return cred, nil
}

// Put stores or replaces the credential for cred.Phone.
func (r *CredentialRepo) Put(ctx context.Context, cred model.Credential) error {
	const query = `INSERT OR REPLACE INTO credentials (phone, session_id, student_id, acquired_at) VALUES (?, ?, ?, ?)`

	acquiredAt := ""
	if !cred.AcquiredAt.IsZero() {
		acquiredAt = cred.AcquiredAt.Format(timeLayout)
	}

	_, err := r.db.Writer.ExecContext(ctx, query, cred.Phone, cred.SessionID, cred.StudentID, acquiredAt)
	if err != nil {
		return fmt.Errorf("put credential %q: %w", cred.Phone, err)
	}
	return nil
}

// Clear blanks the stored session for the given account without removing the
// row. Clearing an account that has no row is a no-op.
func (r *CredentialRepo) Clear(ctx context.Context, phone string) error {
	const query = `UPDATE credentials SET session_id = '', student_id = '', acquired_at = '' WHERE phone = ?`

	_, err := r.db.Writer.ExecContext(ctx, query, phone)
	if err != nil {
		return fmt.Errorf("clear credential %q: %w", phone, err)
	}
	return nil
}
