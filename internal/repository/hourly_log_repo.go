package repository

import (
	"clariasense/internal/models"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type HourlyLogSQLite struct {
	db *sql.DB
}

func NewHourlyLogSQLite(db *sql.DB) *HourlyLogSQLite { return &HourlyLogSQLite{db: db} }

var _ HourlyLogRepo = (*HourlyLogSQLite)(nil)

const (
	insertHourlyLogSQL = `INSERT INTO hourly_logs (id, ph, tds, temp, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	selectHourlyLogsSQL = `SELECT id, ph, tds, temp, timestamp, created_at FROM hourly_logs`
)

func (r *HourlyLogSQLite) Create(ctx context.Context, l models.HourlyLog) (models.HourlyLog, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	} else {
		l.CreatedAt = l.CreatedAt.UTC()
	}

	series := make([]string, 0, 3)
	for _, vals := range [][]float64{l.PH, l.TDS, l.Temp} {
		s, err := marshalSeries(vals)
		if err != nil {
			return models.HourlyLog{}, fmt.Errorf("marshal series: %w", err)
		}
		series = append(series, s)
	}

	if _, err := r.db.ExecContext(ctx, insertHourlyLogSQL,
		l.ID, series[0], series[1], series[2], l.Timestamp, l.CreatedAt,
	); err != nil {
		return models.HourlyLog{}, fmt.Errorf("insert hourly log %s: %w", l.ID, err)
	}
	return l, nil
}

// List returns hourly logs newest first.
func (r *HourlyLogSQLite) List(ctx context.Context, f LogFilter) ([]models.HourlyLog, error) {
	q, args := buildLogQuery(selectHourlyLogsSQL, f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select hourly logs: %w", err)
	}
	defer rows.Close()

	out := make([]models.HourlyLog, 0, 24)
	for rows.Next() {
		var (
			l             models.HourlyLog
			ph, tds, temp string
		)
		if err := rows.Scan(&l.ID, &ph, &tds, &temp, &l.Timestamp, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan hourly log: %w", err)
		}
		l.CreatedAt = l.CreatedAt.UTC()
		if l.PH, err = unmarshalSeries(ph); err != nil {
			return nil, fmt.Errorf("decode ph series of %s: %w", l.ID, err)
		}
		if l.TDS, err = unmarshalSeries(tds); err != nil {
			return nil, fmt.Errorf("decode tds series of %s: %w", l.ID, err)
		}
		if l.Temp, err = unmarshalSeries(temp); err != nil {
			return nil, fmt.Errorf("decode temp series of %s: %w", l.ID, err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hourly logs: %w", err)
	}
	return out, nil
}
