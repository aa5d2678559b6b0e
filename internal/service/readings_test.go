package service

import (
	"clariasense/internal/models"
	"clariasense/internal/trigger"
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

var testThresholds = map[models.SensorID]Range{
	models.SensorPH:   {Min: 6.5, Max: 8.5},
	models.SensorTDS:  {Min: 0, Max: 500},
	models.SensorTemp: {Min: 24, Max: 30},
}

type readingsFixture struct {
	store  *fakeSensorStore
	errors *fakeErrorLogRepo
	hourly *fakeHourlyLogRepo
	pub    *fakePublisher
	svc    *ReadingService
	writer *HourlyWriter
}

func newReadingsFixture() readingsFixture {
	f := readingsFixture{
		store:  newFakeSensorStore(),
		errors: &fakeErrorLogRepo{},
		hourly: &fakeHourlyLogRepo{},
		pub:    &fakePublisher{},
	}
	logs := NewLogService(f.errors, f.hourly, f.pub, time.UTC, nil, nil)
	f.writer = NewHourlyWriter(f.hourly, time.UTC, nil)
	f.svc = NewReadingService(f.store, logs, f.writer, f.pub, testThresholds, nil, nil)
	return f
}

func TestReadingService_Ingest_InRange(t *testing.T) {
	f := newReadingsFixture()

	res, err := f.svc.Ingest(context.Background(), "http", map[models.SensorID]float64{
		models.SensorPH: 7.1, models.SensorTDS: 320, models.SensorTemp: 26,
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Violation != nil {
		t.Fatalf("no violation expected, got %+v", res.Violation)
	}
	if len(res.Readings) != 3 || res.Readings[0].SensorID != models.SensorPH {
		t.Fatalf("unexpected readings: %+v", res.Readings)
	}
	if len(f.errors.created) != 0 || len(f.pub.events) != 0 {
		t.Fatalf("nothing should be recorded or published")
	}
	if f.store.readings[models.SensorTDS] != 320 {
		t.Fatalf("store not written: %+v", f.store.readings)
	}
}

func TestReadingService_Ingest_OutOfRangeCreatesViolation(t *testing.T) {
	f := newReadingsFixture()
	// prior snapshot value for tds
	f.store.readings[models.SensorTDS] = 310

	res, err := f.svc.Ingest(context.Background(), "mqtt", map[models.SensorID]float64{
		models.SensorTemp: 31.5,
		models.SensorPH:   9.2,
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Violation == nil {
		t.Fatalf("expected a violation")
	}
	v := res.Violation
	if len(v.ErrorParameters) != 2 || v.ErrorParameters[0] != models.SensorPH || v.ErrorParameters[1] != models.SensorTemp {
		t.Fatalf("parameters should be ordered ph, temp: %v", v.ErrorParameters)
	}
	if v.PH != 9.2 || v.TDS != 310 || v.Temp != 31.5 {
		t.Fatalf("snapshot not captured: %+v", v)
	}
	if _, err := time.Parse(timestampLayout, v.Timestamp); err != nil {
		t.Fatalf("timestamp %q not in layout: %v", v.Timestamp, err)
	}
	if len(f.pub.events) != 1 || f.pub.events[0].Kind != trigger.ViolationCreated {
		t.Fatalf("expected one violation.created event, got %+v", f.pub.events)
	}
}

func TestReadingService_Ingest_Invalid(t *testing.T) {
	f := newReadingsFixture()

	if _, err := f.svc.Ingest(context.Background(), "http", nil); !errors.Is(err, ErrNoValues) {
		t.Fatalf("want ErrNoValues, got %v", err)
	}
	_, err := f.svc.Ingest(context.Background(), "http", map[models.SensorID]float64{models.SensorPH: math.NaN()})
	if !errors.Is(err, ErrNonFiniteValue) {
		t.Fatalf("want ErrNonFiniteValue, got %v", err)
	}
	if len(f.store.readings) != 0 {
		t.Fatalf("nothing should be written on invalid input")
	}
}

func TestReadingService_Ingest_FeedsHourlyWriter(t *testing.T) {
	f := newReadingsFixture()

	for _, v := range []float64{7.0, 7.4} {
		if _, err := f.svc.Ingest(context.Background(), "http", map[models.SensorID]float64{models.SensorPH: v}); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}
	l, err := f.writer.Flush(context.Background())
	if err != nil || l == nil {
		t.Fatalf("Flush: %v %v", l, err)
	}
	if len(l.PH) != 2 || len(l.TDS) != 0 {
		t.Fatalf("unexpected hourly batch: %+v", l)
	}
}

func TestReadingService_WriteDistance(t *testing.T) {
	f := newReadingsFixture()

	if err := f.svc.WriteDistance(context.Background(), "http", 17.5); err != nil {
		t.Fatalf("WriteDistance: %v", err)
	}
	if d, ok, _ := f.store.Distance(context.Background()); !ok || d != 17.5 {
		t.Fatalf("distance not stored: %v %v", d, ok)
	}
	if len(f.pub.events) != 1 || f.pub.events[0].Kind != trigger.DistanceWritten || *f.pub.events[0].Distance != 17.5 {
		t.Fatalf("expected distance.written event, got %+v", f.pub.events)
	}

	if err := f.svc.WriteDistance(context.Background(), "http", math.Inf(-1)); !errors.Is(err, ErrNonFiniteValue) {
		t.Fatalf("want ErrNonFiniteValue, got %v", err)
	}
}

func TestReadingService_WriteDistance_PublishFailureIsNotFatal(t *testing.T) {
	f := newReadingsFixture()
	f.pub.err = errors.New("bus stopped")

	if err := f.svc.WriteDistance(context.Background(), "http", 20); err != nil {
		t.Fatalf("publish failure should only be logged, got %v", err)
	}
}

func TestReadingService_Current(t *testing.T) {
	f := newReadingsFixture()
	f.store.readings[models.SensorTemp] = 26
	f.store.readings["orp"] = 210
	f.store.readings[models.SensorPH] = 7

	got, err := f.svc.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 readings, got %+v", got)
	}
	if got[0].Label != "pH Level" || got[0].Unit != "pH" {
		t.Fatalf("unexpected ph label: %+v", got[0])
	}
	if got[1].Label != "Temperature" || got[1].Unit != "°C" {
		t.Fatalf("unexpected temp label: %+v", got[1])
	}
	if got[2].Label != "orp" || got[2].Unit != "" {
		t.Fatalf("unknown sensor should keep raw id: %+v", got[2])
	}
}
