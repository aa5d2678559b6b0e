package repository

import (
	"clariasense/internal/models"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MailSQLite writes the mail collection. Rows are picked up by the external mailer.
type MailSQLite struct {
	db *sql.DB
}

func NewMailSQLite(db *sql.DB) *MailSQLite { return &MailSQLite{db: db} }

var _ MailRepo = (*MailSQLite)(nil)

const insertMailSQL = `INSERT INTO mail (id, recipients, subject, html, created_at) VALUES (?, ?, ?, ?, ?)`

func (r *MailSQLite) Enqueue(ctx context.Context, job models.MailJob) error {
	if len(job.To) == 0 {
		return ErrNoRecipients
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	to, err := json.Marshal(job.To)
	if err != nil {
		return fmt.Errorf("marshal recipients: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, insertMailSQL,
		job.ID,
		string(to),
		job.Message.Subject,
		job.Message.HTML,
		job.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert mail %s: %w", job.ID, err)
	}
	return nil
}
