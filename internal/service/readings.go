package service

import (
	"clariasense/internal/logger"
	"clariasense/internal/metrics"
	"clariasense/internal/models"
	"clariasense/internal/repository"
	"clariasense/internal/trigger"
	"context"
	"fmt"
	"math"
)

type violationRecorder interface {
	CreateErrorLog(ctx context.Context, v models.ThresholdViolation) (models.ThresholdViolation, error)
}

type sampleRecorder interface {
	Record(id models.SensorID, value float64)
}

// ReadingService writes sensor values to the realtime store and turns
// out-of-range values into violation records.
type ReadingService struct {
	sensors    repository.SensorStore
	violations violationRecorder
	samples    sampleRecorder
	publisher  trigger.Publisher
	thresholds map[models.SensorID]Range
	log        *logger.Logger
	metrics    *metrics.Metrics
}

func NewReadingService(
	sensors repository.SensorStore,
	violations violationRecorder,
	samples sampleRecorder,
	publisher trigger.Publisher,
	thresholds map[models.SensorID]Range,
	log *logger.Logger,
	m *metrics.Metrics,
) *ReadingService {
	return &ReadingService{
		sensors:    sensors,
		violations: violations,
		samples:    samples,
		publisher:  publisher,
		thresholds: thresholds,
		log:        logger.OrNop(log),
		metrics:    m,
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Ingest writes every value, then records a violation when any of them is
// outside its configured range.
func (s *ReadingService) Ingest(ctx context.Context, source string, values map[models.SensorID]float64) (IngestResult, error) {
	if len(values) == 0 {
		return IngestResult{}, ErrNoValues
	}
	readings := make([]models.SensorReading, 0, len(values))
	for id, v := range values {
		if !finite(v) {
			return IngestResult{}, ErrNonFiniteValue
		}
		readings = append(readings, models.SensorReading{SensorID: id, Value: v})
	}
	models.SortReadings(readings)

	for _, r := range readings {
		if err := s.sensors.SetReading(ctx, r); err != nil {
			return IngestResult{}, fmt.Errorf("write sensors/%s: %w", r.SensorID, err)
		}
		s.samples.Record(r.SensorID, r.Value)
		s.metrics.ReadingIngested(string(r.SensorID), source)
	}
	result := IngestResult{Readings: readings}

	var params []models.SensorID
	for _, id := range models.KnownSensors {
		v, ok := values[id]
		if !ok {
			continue
		}
		if rng, ok := s.thresholds[id]; ok && !rng.Contains(v) {
			params = append(params, id)
		}
	}
	if len(params) == 0 {
		return result, nil
	}

	snapshot, err := s.sensors.Readings(ctx)
	if err != nil {
		return result, fmt.Errorf("read snapshot: %w", err)
	}
	v := models.ThresholdViolation{ErrorParameters: params}
	for _, r := range snapshot {
		switch r.SensorID {
		case models.SensorPH:
			v.PH = r.Value
		case models.SensorTDS:
			v.TDS = r.Value
		case models.SensorTemp:
			v.Temp = r.Value
		}
	}

	created, err := s.violations.CreateErrorLog(ctx, v)
	if err != nil {
		return result, fmt.Errorf("record violation: %w", err)
	}
	result.Violation = &created
	return result, nil
}

// WriteDistance stores the refill distance and publishes the written trigger.
func (s *ReadingService) WriteDistance(ctx context.Context, source string, distance float64) error {
	if !finite(distance) {
		return ErrNonFiniteValue
	}
	if err := s.sensors.SetDistance(ctx, distance); err != nil {
		return fmt.Errorf("write distance: %w", err)
	}
	s.metrics.ReadingIngested("distance", source)

	if err := s.publisher.Publish(ctx, trigger.NewDistanceEvent(distance)); err != nil {
		s.log.Errorw("distance_publish_failed", "distance", distance, "err", err)
	}
	return nil
}

// Current returns the live readings with labels and units.
func (s *ReadingService) Current(ctx context.Context) ([]models.LabeledReading, error) {
	rs, err := s.sensors.Readings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.LabeledReading, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Labeled())
	}
	return out, nil
}
