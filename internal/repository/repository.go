package repository

import (
	"clariasense/internal/models"
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNoRecipients = errors.New("mail job has no recipients")

// LogFilter bounds a log listing. Zero values mean unbounded.
type LogFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

type DeviceRepo interface {
	Upsert(ctx context.Context, name, secretHash string) error
	GetByName(ctx context.Context, name string) (*models.Device, error)
}

type SubscriberRepo interface {
	// Add inserts s unless its email is already present. created is false for duplicates.
	Add(ctx context.Context, s models.Subscriber) (created bool, err error)
	List(ctx context.Context) ([]models.Subscriber, error)
	DeleteByEmail(ctx context.Context, email string) (int64, error)
}

type ErrorLogRepo interface {
	Create(ctx context.Context, v models.ThresholdViolation) (models.ThresholdViolation, error)
	List(ctx context.Context, f LogFilter) ([]models.ThresholdViolation, error)
}

type HourlyLogRepo interface {
	Create(ctx context.Context, l models.HourlyLog) (models.HourlyLog, error)
	List(ctx context.Context, f LogFilter) ([]models.HourlyLog, error)
}

type MailRepo interface {
	Enqueue(ctx context.Context, job models.MailJob) error
}

// SensorStore is the realtime key-value side: current readings, the refill
// distance and the refill cooldown record.
type SensorStore interface {
	SetReading(ctx context.Context, r models.SensorReading) error
	Readings(ctx context.Context) ([]models.SensorReading, error)
	SetDistance(ctx context.Context, distance float64) error
	Distance(ctx context.Context) (float64, bool, error)
	LoadCooldown(ctx context.Context) (models.CooldownState, error)
	// SwapCooldown stores at as the last notification iff the stored version
	// still equals expected. ok is false when another writer got there first.
	SwapCooldown(ctx context.Context, expected uint64, at time.Time) (state models.CooldownState, ok bool, err error)
}

type Repository struct {
	Devices     DeviceRepo
	Subscribers SubscriberRepo
	ErrorLogs   ErrorLogRepo
	HourlyLogs  HourlyLogRepo
	Mail        MailRepo
	Sensors     SensorStore
}

func NewRepository(db *sql.DB, sensors SensorStore) *Repository {
	return &Repository{
		Devices:     NewDeviceRepository(db),
		Subscribers: NewSubscriberSQLite(db),
		ErrorLogs:   NewErrorLogSQLite(db),
		HourlyLogs:  NewHourlyLogSQLite(db),
		Mail:        NewMailSQLite(db),
		Sensors:     sensors,
	}
}
