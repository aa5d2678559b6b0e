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

type ErrorLogSQLite struct {
	db *sql.DB
}

func NewErrorLogSQLite(db *sql.DB) *ErrorLogSQLite { return &ErrorLogSQLite{db: db} }

var _ ErrorLogRepo = (*ErrorLogSQLite)(nil)

const (
	insertErrorLogSQL = `INSERT INTO error_logs (id, ph, tds, temp, error_parameters, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectErrorLogsSQL = `SELECT id, ph, tds, temp, error_parameters, timestamp, created_at FROM error_logs`
)

// Create inserts a violation record. ID and CreatedAt are filled when empty.
func (r *ErrorLogSQLite) Create(ctx context.Context, v models.ThresholdViolation) (models.ThresholdViolation, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	} else {
		v.CreatedAt = v.CreatedAt.UTC()
	}

	// absent parameters stay NULL so they read back as absent
	var params *string
	if v.ErrorParameters != nil {
		b, err := json.Marshal(v.ErrorParameters)
		if err != nil {
			return models.ThresholdViolation{}, fmt.Errorf("marshal error parameters: %w", err)
		}
		s := string(b)
		params = &s
	}

	if _, err := r.db.ExecContext(ctx, insertErrorLogSQL,
		v.ID, v.PH, v.TDS, v.Temp, params, v.Timestamp, v.CreatedAt,
	); err != nil {
		return models.ThresholdViolation{}, fmt.Errorf("insert error log %s: %w", v.ID, err)
	}
	return v, nil
}

// List returns violation records newest first.
func (r *ErrorLogSQLite) List(ctx context.Context, f LogFilter) ([]models.ThresholdViolation, error) {
	q, args := buildLogQuery(selectErrorLogsSQL, f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select error logs: %w", err)
	}
	defer rows.Close()

	out := make([]models.ThresholdViolation, 0, 64)
	for rows.Next() {
		var (
			v      models.ThresholdViolation
			params sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.PH, &v.TDS, &v.Temp, &params, &v.Timestamp, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error log: %w", err)
		}
		v.CreatedAt = v.CreatedAt.UTC()
		if params.Valid {
			v.ErrorParameters = models.DecodeErrorParameters([]byte(params.String))
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate error logs: %w", err)
	}
	return out, nil
}
