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

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

type LogService struct {
	errorLogs  repository.ErrorLogRepo
	hourlyLogs repository.HourlyLogRepo
	publisher  trigger.Publisher
	loc        *time.Location
	log        *logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewLogService(
	errorLogs repository.ErrorLogRepo,
	hourlyLogs repository.HourlyLogRepo,
	publisher trigger.Publisher,
	loc *time.Location,
	log *logger.Logger,
	m *metrics.Metrics,
) *LogService {
	if loc == nil {
		loc = time.UTC
	}
	return &LogService{
		errorLogs:  errorLogs,
		hourlyLogs: hourlyLogs,
		publisher:  publisher,
		loc:        loc,
		log:        logger.OrNop(log),
		metrics:    m,
		now:        time.Now,
	}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeFilter validates the range and clamps the limit.
func normalizeFilter(f LogFilter) (repository.LogFilter, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.LogFilter{}, ErrInvalidTimeRange
	}

	limit := f.Limit
	switch {
	case limit <= 0:
		limit = defaultLogLimit
	case limit > maxLogLimit:
		limit = maxLogLimit
	}
	return repository.LogFilter{From: from, To: to, Limit: limit}, nil
}

func (s *LogService) stamp() string {
	return s.now().In(s.loc).Format(timestampLayout)
}

func (s *LogService) ListErrorLogs(ctx context.Context, f LogFilter) ([]models.ThresholdViolation, error) {
	rf, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	return s.errorLogs.List(ctx, rf)
}

// ListHourlyLogs returns hourly logs newest first with per-sensor min/max.
func (s *LogService) ListHourlyLogs(ctx context.Context, f LogFilter) ([]models.HourlyLogView, error) {
	rf, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	logs, err := s.hourlyLogs.List(ctx, rf)
	if err != nil {
		return nil, err
	}
	out := make([]models.HourlyLogView, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.View())
	}
	return out, nil
}

// CreateErrorLog stores a violation record and publishes the created trigger.
// A publish failure is logged; the record stays.
func (s *LogService) CreateErrorLog(ctx context.Context, v models.ThresholdViolation) (models.ThresholdViolation, error) {
	if len(v.UnknownParameters()) > 0 {
		return models.ThresholdViolation{}, ErrInvalidErrorParameters
	}
	if v.Timestamp == "" {
		v.Timestamp = s.stamp()
	}

	created, err := s.errorLogs.Create(ctx, v)
	if err != nil {
		return models.ThresholdViolation{}, err
	}
	s.metrics.ViolationCreated()
	s.log.Infow("violation_recorded", "id", created.ID, "parameters", created.ParametersText(parametersSeparator))

	if err := s.publisher.Publish(ctx, trigger.NewViolationEvent(created)); err != nil {
		s.log.Errorw("violation_publish_failed", "id", created.ID, "err", err)
	}
	return created, nil
}

func (s *LogService) CreateHourlyLog(ctx context.Context, l models.HourlyLog) (models.HourlyLog, error) {
	if l.Timestamp == "" {
		l.Timestamp = s.stamp()
	}
	return s.hourlyLogs.Create(ctx, l)
}
