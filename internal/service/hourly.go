package service

import (
	"clariasense/internal/logger"
	"clariasense/internal/models"
	"clariasense/internal/repository"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// HourlyWriter buffers every ph/tds/temp sample and writes them as one
// hourly_logs document per scheduled flush.
type HourlyWriter struct {
	repo repository.HourlyLogRepo
	loc  *time.Location
	log  *logger.Logger
	now  func() time.Time

	mu  sync.Mutex
	buf models.HourlyLog
}

func NewHourlyWriter(repo repository.HourlyLogRepo, loc *time.Location, log *logger.Logger) *HourlyWriter {
	if loc == nil {
		loc = time.UTC
	}
	return &HourlyWriter{repo: repo, loc: loc, log: logger.OrNop(log), now: time.Now}
}

// Record buffers one sample. Unknown sensors are ignored.
func (w *HourlyWriter) Record(id models.SensorID, value float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch id {
	case models.SensorPH:
		w.buf.PH = append(w.buf.PH, value)
	case models.SensorTDS:
		w.buf.TDS = append(w.buf.TDS, value)
	case models.SensorTemp:
		w.buf.Temp = append(w.buf.Temp, value)
	}
}

// Flush swaps the buffer out and writes it. An empty buffer writes nothing
// and returns (nil, nil). On a write error the samples are dropped.
func (w *HourlyWriter) Flush(ctx context.Context) (*models.HourlyLog, error) {
	w.mu.Lock()
	batch := w.buf
	w.buf = models.HourlyLog{}
	w.mu.Unlock()

	if len(batch.PH)+len(batch.TDS)+len(batch.Temp) == 0 {
		return nil, nil
	}
	batch.Timestamp = w.now().In(w.loc).Format(timestampLayout)

	created, err := w.repo.Create(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("write hourly log: %w", err)
	}
	w.log.Infow("hourly_log_written", "id", created.ID,
		"ph_samples", len(created.PH), "tds_samples", len(created.TDS), "temp_samples", len(created.Temp))
	return &created, nil
}

// Schedule starts a cron that flushes on spec (e.g. "@hourly") in the
// writer's timezone. Stop the returned cron on shutdown.
func (w *HourlyWriter) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(w.loc))
	if _, err := c.AddFunc(spec, func() {
		if _, err := w.Flush(ctx); err != nil {
			w.log.Errorw("hourly_log_flush_failed", "err", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule hourly writer %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
