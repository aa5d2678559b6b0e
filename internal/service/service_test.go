package service

import (
	"clariasense/internal/models"
	"clariasense/internal/repository"
	"clariasense/internal/trigger"
	"context"
	"errors"
	"testing"
	"time"
)

// captureBus keeps subscribed handlers so tests can invoke them directly.
type captureBus struct {
	handlers map[trigger.Kind][]trigger.Handler
}

func (b *captureBus) Publish(context.Context, trigger.Event) error { return nil }
func (b *captureBus) Run(context.Context) error                    { return nil }
func (b *captureBus) Subscribe(kind trigger.Kind, h trigger.Handler) {
	if b.handlers == nil {
		b.handlers = map[trigger.Kind][]trigger.Handler{}
	}
	b.handlers[kind] = append(b.handlers[kind], h)
}

func TestService_RegisterTriggers(t *testing.T) {
	mail := &fakeMailRepo{}
	repos := &repository.Repository{
		Devices:     &mockDeviceRepo{},
		Subscribers: subscribersFor("a@tank.io", "b@tank.io"),
		ErrorLogs:   &fakeErrorLogRepo{},
		HourlyLogs:  &fakeHourlyLogRepo{},
		Mail:        mail,
		Sensors:     newFakeSensorStore(),
	}
	svc := NewService(repos, Deps{Settings: Settings{
		MailBaseURL:     "https://clariasense.web.app",
		RefillThreshold: 14,
		RefillCooldown:  time.Hour,
	}})

	bus := &captureBus{}
	svc.RegisterTriggers(bus)

	onViolation := bus.handlers[trigger.ViolationCreated]
	onDistance := bus.handlers[trigger.DistanceWritten]
	if len(onViolation) != 1 || len(onDistance) != 1 {
		t.Fatalf("expected one handler per kind, got %d/%d", len(onViolation), len(onDistance))
	}

	if err := onViolation[0](context.Background(), trigger.NewViolationEvent(models.ThresholdViolation{ID: "v1", Timestamp: "t"})); err != nil {
		t.Fatalf("violation handler: %v", err)
	}
	if mail.count() != 2 {
		t.Fatalf("want 2 violation mails, got %d", mail.count())
	}
	if err := onDistance[0](context.Background(), trigger.NewDistanceEvent(20)); err != nil {
		t.Fatalf("distance handler: %v", err)
	}
	if mail.count() != 4 {
		t.Fatalf("want 2 more refill mails, got %d total", mail.count())
	}

	if err := onDistance[0](context.Background(), trigger.Event{Kind: trigger.DistanceWritten}); !errors.Is(err, errMissingPayload) {
		t.Fatalf("want errMissingPayload, got %v", err)
	}
}
