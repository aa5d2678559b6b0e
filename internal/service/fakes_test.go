package service

import (
	"clariasense/internal/models"
	"clariasense/internal/repository"
	"clariasense/internal/trigger"
	"context"
	"errors"
	"sync"
	"time"
)

// ---- Test doubles ----

type fakeSubscriberRepo struct {
	mu      sync.Mutex
	subs    []models.Subscriber
	listErr error
	addErr  error
	delErr  error
}

func (r *fakeSubscriberRepo) Add(_ context.Context, s models.Subscriber) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return false, r.addErr
	}
	for _, existing := range r.subs {
		if existing.Email == s.Email {
			return false, nil
		}
	}
	r.subs = append(r.subs, s)
	return true, nil
}

func (r *fakeSubscriberRepo) List(context.Context) ([]models.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]models.Subscriber(nil), r.subs...), nil
}

func (r *fakeSubscriberRepo) DeleteByEmail(_ context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.delErr != nil {
		return 0, r.delErr
	}
	kept := r.subs[:0]
	var n int64
	for _, s := range r.subs {
		if s.Email == email {
			n++
			continue
		}
		kept = append(kept, s)
	}
	r.subs = kept
	return n, nil
}

func subscribersFor(emails ...string) *fakeSubscriberRepo {
	r := &fakeSubscriberRepo{}
	for _, e := range emails {
		r.subs = append(r.subs, models.Subscriber{ID: e, Email: e})
	}
	return r
}

type fakeMailRepo struct {
	mu     sync.Mutex
	jobs   []models.MailJob
	failTo map[string]bool
}

func (r *fakeMailRepo) Enqueue(_ context.Context, job models.MailJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(job.To) == 0 {
		return repository.ErrNoRecipients
	}
	if r.failTo[job.To[0]] {
		return errors.New("write rejected")
	}
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *fakeMailRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// fakeSensorStore is an in-memory SensorStore with a real compare-and-swap.
type fakeSensorStore struct {
	mu        sync.Mutex
	readings  map[models.SensorID]float64
	distance  *float64
	cooldown  models.CooldownState
	setErr    error
	loadErr   error
	swapCalls int
}

func newFakeSensorStore() *fakeSensorStore {
	return &fakeSensorStore{readings: map[models.SensorID]float64{}}
}

func (s *fakeSensorStore) SetReading(_ context.Context, r models.SensorReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.readings[r.SensorID] = r.Value
	return nil
}

func (s *fakeSensorStore) Readings(context.Context) ([]models.SensorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SensorReading, 0, len(s.readings))
	for id, v := range s.readings {
		out = append(out, models.SensorReading{SensorID: id, Value: v})
	}
	models.SortReadings(out)
	return out, nil
}

func (s *fakeSensorStore) SetDistance(_ context.Context, d float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.distance = &d
	return nil
}

func (s *fakeSensorStore) Distance(context.Context) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.distance == nil {
		return 0, false, nil
	}
	return *s.distance, true, nil
}

func (s *fakeSensorStore) LoadCooldown(context.Context) (models.CooldownState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return models.CooldownState{}, s.loadErr
	}
	return s.cooldown, nil
}

func (s *fakeSensorStore) SwapCooldown(_ context.Context, expected uint64, at time.Time) (models.CooldownState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swapCalls++
	if s.cooldown.Version != expected {
		return s.cooldown, false, nil
	}
	s.cooldown = models.CooldownState{LastNotification: at, Version: expected + 1}
	return s.cooldown, true, nil
}

type fakeErrorLogRepo struct {
	mu        sync.Mutex
	created   []models.ThresholdViolation
	createErr error
	listed    repository.LogFilter
	list      []models.ThresholdViolation
}

func (r *fakeErrorLogRepo) Create(_ context.Context, v models.ThresholdViolation) (models.ThresholdViolation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return models.ThresholdViolation{}, r.createErr
	}
	if v.ID == "" {
		v.ID = "v-generated"
	}
	r.created = append(r.created, v)
	return v, nil
}

func (r *fakeErrorLogRepo) List(_ context.Context, f repository.LogFilter) ([]models.ThresholdViolation, error) {
	r.listed = f
	return r.list, nil
}

type fakeHourlyLogRepo struct {
	mu        sync.Mutex
	created   []models.HourlyLog
	createErr error
	list      []models.HourlyLog
}

func (r *fakeHourlyLogRepo) Create(_ context.Context, l models.HourlyLog) (models.HourlyLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return models.HourlyLog{}, r.createErr
	}
	if l.ID == "" {
		l.ID = "h-generated"
	}
	r.created = append(r.created, l)
	return l, nil
}

func (r *fakeHourlyLogRepo) List(context.Context, repository.LogFilter) ([]models.HourlyLog, error) {
	return r.list, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []trigger.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e trigger.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
