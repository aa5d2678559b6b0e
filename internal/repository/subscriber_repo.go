package repository

import (
	"clariasense/internal/models"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SubscriberSQLite struct {
	db *sql.DB
}

func NewSubscriberSQLite(db *sql.DB) *SubscriberSQLite { return &SubscriberSQLite{db: db} }

var _ SubscriberRepo = (*SubscriberSQLite)(nil)

const (
	insertSubscriberSQL = `INSERT INTO subscribers (id, email, subscribed_at) VALUES (?, ?, ?)
		ON CONFLICT(email) DO NOTHING`
	selectSubscribersSQL       = `SELECT id, email, subscribed_at FROM subscribers ORDER BY subscribed_at ASC`
	deleteSubscriberByEmailSQL = `DELETE FROM subscribers WHERE email = ?`
)

// Add inserts the subscriber keyed on its email. The caller normalizes the email.
func (r *SubscriberSQLite) Add(ctx context.Context, s models.Subscriber) (bool, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.SubscribedAt.IsZero() {
		s.SubscribedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, insertSubscriberSQL, s.ID, s.Email, s.SubscribedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("insert subscriber %q: %w", s.Email, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for subscriber %q: %w", s.Email, err)
	}
	return n == 1, nil
}

func (r *SubscriberSQLite) List(ctx context.Context) ([]models.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, selectSubscribersSQL)
	if err != nil {
		return nil, fmt.Errorf("select subscribers: %w", err)
	}
	defer rows.Close()

	var out []models.Subscriber
	for rows.Next() {
		var s models.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.SubscribedAt); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		s.SubscribedAt = s.SubscribedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return out, nil
}

// DeleteByEmail removes every subscriber with the given email and reports how many went.
func (r *SubscriberSQLite) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteSubscriberByEmailSQL, email)
	if err != nil {
		return 0, fmt.Errorf("delete subscriber %q: %w", email, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for delete %q: %w", email, err)
	}
	return n, nil
}
