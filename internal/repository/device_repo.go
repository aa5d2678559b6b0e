package repository

import (
	"clariasense/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type DeviceRepository struct {
	db *sql.DB
}

func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

var _ DeviceRepo = (*DeviceRepository)(nil)

const (
	upsertDeviceSQL = `INSERT INTO devices (name, secret_hash) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET secret_hash = excluded.secret_hash`
	selectDeviceByNameSQL = `SELECT id, name, secret_hash FROM devices WHERE name = ?`
)

// Upsert provisions a device or replaces its secret hash.
func (r *DeviceRepository) Upsert(ctx context.Context, name, secretHash string) error {
	if _, err := r.db.ExecContext(ctx, upsertDeviceSQL, name, secretHash); err != nil {
		return fmt.Errorf("upsert device %q: %w", name, err)
	}
	return nil
}

// GetByName fetches a device by name. Returns (nil, nil) if not found.
func (r *DeviceRepository) GetByName(ctx context.Context, name string) (*models.Device, error) {
	var d models.Device
	err := r.db.QueryRowContext(ctx, selectDeviceByNameSQL, name).Scan(&d.ID, &d.Name, &d.SecretHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select device %q: %w", name, err)
	}
	return &d, nil
}
