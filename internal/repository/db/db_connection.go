package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures the document tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite is not great with many writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaErrorLogs = `
CREATE TABLE IF NOT EXISTS error_logs (
    id TEXT PRIMARY KEY,
    ph REAL NOT NULL,
    tds REAL NOT NULL,
    temp REAL NOT NULL,
    error_parameters TEXT,
    timestamp TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

const schemaHourlyLogs = `
CREATE TABLE IF NOT EXISTS hourly_logs (
    id TEXT PRIMARY KEY,
    ph TEXT NOT NULL,
    tds TEXT NOT NULL,
    temp TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

const schemaSubscribers = `
CREATE TABLE IF NOT EXISTS subscribers (
    id TEXT PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    subscribed_at TIMESTAMP NOT NULL
);
`

const schemaMail = `
CREATE TABLE IF NOT EXISTS mail (
    id TEXT PRIMARY KEY,
    recipients TEXT NOT NULL,
    subject TEXT NOT NULL,
    html TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

const schemaDevices = `
CREATE TABLE IF NOT EXISTS devices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    secret_hash TEXT NOT NULL
);
`

const (
	indexErrorLogs  = `CREATE INDEX IF NOT EXISTS idx_error_logs_created_at ON error_logs (created_at);`
	indexHourlyLogs = `CREATE INDEX IF NOT EXISTS idx_hourly_logs_created_at ON hourly_logs (created_at);`
)

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaErrorLogs,
		schemaHourlyLogs,
		schemaSubscribers,
		schemaMail,
		schemaDevices,
		indexErrorLogs,
		indexHourlyLogs,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
