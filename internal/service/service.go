package service

import (
	"clariasense/internal/logger"
	"clariasense/internal/metrics"
	"clariasense/internal/models"
	"clariasense/internal/repository"
	"clariasense/internal/trigger"
	"context"
	"time"
)

// DeviceAuth provisions rig devices and issues the tokens they write with.
type DeviceAuth interface {
	Provision(ctx context.Context, name, secret string) error
	GenerateToken(ctx context.Context, name, secret string) (string, error)
	ParseToken(accessToken string) (string, error)
}

// Subscriptions manages the alert mailing list.
type Subscriptions interface {
	Subscribe(ctx context.Context, email string) (models.Subscriber, bool, error)
	Unsubscribe(ctx context.Context, email string) error
}

// Readings writes and reads the realtime sensor values.
type Readings interface {
	Ingest(ctx context.Context, source string, values map[models.SensorID]float64) (IngestResult, error)
	WriteDistance(ctx context.Context, source string, distance float64) error
	Current(ctx context.Context) ([]models.LabeledReading, error)
}

// Logs exposes the hourly and error log collections.
type Logs interface {
	ListErrorLogs(ctx context.Context, f LogFilter) ([]models.ThresholdViolation, error)
	ListHourlyLogs(ctx context.Context, f LogFilter) ([]models.HourlyLogView, error)
	CreateErrorLog(ctx context.Context, v models.ThresholdViolation) (models.ThresholdViolation, error)
	CreateHourlyLog(ctx context.Context, l models.HourlyLog) (models.HourlyLog, error)
}

// Alerts are the reactive handlers behind the trigger bus.
type Alerts interface {
	HandleViolation(ctx context.Context, v models.ThresholdViolation) (FanOutReport, error)
	HandleDistance(ctx context.Context, distance float64) (RefillResult, error)
}

// Simulator feeds synthetic readings until ctx is cancelled.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Settings carries the tunables the services need from config.
type Settings struct {
	Thresholds        map[models.SensorID]Range
	Location          *time.Location
	MailBaseURL       string
	MaxParallelWrites int
	RefillThreshold   float64
	RefillCooldown    time.Duration
	JWTSecret         string
	TokenTTL          time.Duration
}

// Deps are the collaborators shared by every service.
type Deps struct {
	Publisher trigger.Publisher
	Log       *logger.Logger
	Metrics   *metrics.Metrics
	Settings  Settings
}

// Service aggregates all sub-services.
type Service struct {
	DeviceAuth
	Subscriptions
	Readings
	Logs
	Alerts
	Simulator

	Hourly *HourlyWriter
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	log := logger.OrNop(deps.Log)
	loc := deps.Settings.Location
	if loc == nil {
		loc = time.UTC
	}
	pub := deps.Publisher
	if pub == nil {
		pub = noopPublisher{}
	}

	hourly := NewHourlyWriter(repos.HourlyLogs, loc, log)
	logs := NewLogService(repos.ErrorLogs, repos.HourlyLogs, pub, loc, log, deps.Metrics)
	readings := NewReadingService(repos.Sensors, logs, hourly, pub, deps.Settings.Thresholds, log, deps.Metrics)
	mailer := newMailer(repos.Mail, deps.Settings.MailBaseURL, deps.Settings.MaxParallelWrites, log, deps.Metrics)

	return &Service{
		DeviceAuth:    NewDeviceAuthService(repos.Devices, deps.Settings.JWTSecret, deps.Settings.TokenTTL),
		Subscriptions: NewSubscriptionService(repos.Subscribers, log),
		Readings:      readings,
		Logs:          logs,
		Alerts: &alertService{
			AlertDispatcher: NewAlertDispatcher(repos.Subscribers, mailer, log),
			RefillNotifier: NewRefillNotifier(repos.Sensors, repos.Subscribers, mailer,
				deps.Settings.RefillThreshold, deps.Settings.RefillCooldown, log, deps.Metrics),
		},
		Simulator: NewSimulatorService(readings, log),
		Hourly:    hourly,
	}
}

type alertService struct {
	*AlertDispatcher
	*RefillNotifier
}

// RegisterTriggers subscribes the alert handlers to bus.
func (s *Service) RegisterTriggers(bus trigger.Bus) {
	bus.Subscribe(trigger.ViolationCreated, func(ctx context.Context, e trigger.Event) error {
		if e.Violation == nil {
			return errMissingPayload
		}
		_, err := s.HandleViolation(ctx, *e.Violation)
		return err
	})
	bus.Subscribe(trigger.DistanceWritten, func(ctx context.Context, e trigger.Event) error {
		if e.Distance == nil {
			return errMissingPayload
		}
		_, err := s.HandleDistance(ctx, *e.Distance)
		return err
	})
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, trigger.Event) error { return nil }
