package repository

import (
	"clariasense/internal/models"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestErrorLogSQLite_Create(t *testing.T) {
	tests := []struct {
		name       string
		params     []models.SensorID
		wantParams any
	}{
		{name: "with parameters", params: []models.SensorID{"ph", "temp"}, wantParams: `["ph","temp"]`},
		{name: "absent parameters stored as NULL", params: nil, wantParams: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock new: %v", err)
			}
			defer db.Close()

			mock.ExpectExec(regexp.QuoteMeta(insertErrorLogSQL)).
				WithArgs(sqlmock.AnyArg(), 9.1, 300.0, 27.5, tt.wantParams, "2025-03-01 10:00:00", sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, 1))

			got, err := NewErrorLogSQLite(db).Create(ctx(t), models.ThresholdViolation{
				PH: 9.1, TDS: 300, Temp: 27.5,
				ErrorParameters: tt.params,
				Timestamp:       "2025-03-01 10:00:00",
			})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if got.ID == "" || got.CreatedAt.IsZero() {
				t.Fatalf("expected generated id and createdAt, got %+v", got)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("mock expectations: %v", err)
			}
		})
	}
}

func TestErrorLogSQLite_Create_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO error_logs").WillReturnError(errors.New("down"))

	_, err = NewErrorLogSQLite(db).Create(ctx(t), models.ThresholdViolation{Timestamp: "x"})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
}

func TestErrorLogSQLite_List_NoFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "ph", "tds", "temp", "error_parameters", "timestamp", "created_at"}).
		AddRow("2", 9.0, 100.0, 25.0, `["ph"]`, "2025-01-01 11:00:00", now.Add(time.Hour)).
		AddRow("1", 7.0, 900.0, 25.0, nil, "2025-01-01 10:00:00", now).
		AddRow("0", 7.0, 100.0, 35.0, `"temp"`, "2025-01-01 09:00:00", now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(selectErrorLogsSQL + ` ORDER BY timestamp DESC, created_at DESC`)).
		WillReturnRows(rows)

	got, err := NewErrorLogSQLite(db).List(ctx(t), LogFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3, got %d", len(got))
	}
	if len(got[0].ErrorParameters) != 1 || got[0].ErrorParameters[0] != models.SensorPH {
		t.Fatalf("unexpected parameters: %v", got[0].ErrorParameters)
	}
	if got[1].ErrorParameters != nil {
		t.Fatalf("NULL parameters should be absent, got %v", got[1].ErrorParameters)
	}
	if got[2].ErrorParameters != nil {
		t.Fatalf("non-array parameters should be absent, got %v", got[2].ErrorParameters)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestErrorLogSQLite_List_WithFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	query := selectErrorLogsSQL + ` WHERE created_at >= ? AND created_at <= ? ORDER BY timestamp DESC, created_at DESC LIMIT ?`

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(from, to, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ph", "tds", "temp", "error_parameters", "timestamp", "created_at"}))

	got, err := NewErrorLogSQLite(db).List(ctx(t), LogFilter{From: from, To: to, Limit: 5})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestErrorLogSQLite_List_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "ph", "tds", "temp", "error_parameters", "timestamp", "created_at"}).
		AddRow("x", "not-a-number", 1.0, 1.0, nil, "t", time.Now())
	mock.ExpectQuery("SELECT id, ph, tds, temp").WillReturnRows(rows)

	if _, err := NewErrorLogSQLite(db).List(ctx(t), LogFilter{}); err == nil {
		t.Fatalf("expected scan error, got nil")
	}
}
