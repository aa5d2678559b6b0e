// Package trigger delivers store-change events (a violation record was
// created, the refill distance was written) to the reactive handlers.
// Every event is acknowledged after its handlers ran, whether they failed or
// not; there is no retry.
package trigger

import (
	"clariasense/internal/logger"
	"clariasense/internal/metrics"
	"clariasense/internal/models"
	"context"
	"sync"
	"time"
)

type Kind string

const (
	ViolationCreated Kind = "violation.created"
	DistanceWritten  Kind = "distance.written"
)

type Event struct {
	Kind      Kind                       `json:"kind"`
	Violation *models.ThresholdViolation `json:"violation,omitempty"`
	Distance  *float64                   `json:"distance,omitempty"`
	At        time.Time                  `json:"at"`
}

func NewViolationEvent(v models.ThresholdViolation) Event {
	return Event{Kind: ViolationCreated, Violation: &v, At: time.Now().UTC()}
}

func NewDistanceEvent(d float64) Event {
	return Event{Kind: DistanceWritten, Distance: &d, At: time.Now().UTC()}
}

// Handler reacts to one event. A returned error is logged and counted only.
type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Bus publishes events and runs the subscribed handlers until ctx is done.
type Bus interface {
	Publisher
	Subscribe(kind Kind, h Handler)
	Run(ctx context.Context) error
}

// router is the handler table shared by both transports.
type router struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
	timeout  time.Duration
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func newRouter(timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *router {
	return &router{
		handlers: make(map[Kind][]Handler),
		timeout:  timeout,
		log:      logger.OrNop(log),
		metrics:  m,
	}
}

func (r *router) Subscribe(kind Kind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = append(r.handlers[kind], h)
}

// dispatch runs every handler for e, each under its own timeout.
func (r *router) dispatch(ctx context.Context, e Event) {
	r.mu.RLock()
	hs := append([]Handler(nil), r.handlers[e.Kind]...)
	r.mu.RUnlock()

	if len(hs) == 0 {
		r.log.Debugw("trigger_unhandled", "kind", e.Kind)
		return
	}
	for _, h := range hs {
		hctx, cancel := ctx, context.CancelFunc(func() {})
		if r.timeout > 0 {
			hctx, cancel = context.WithTimeout(ctx, r.timeout)
		}
		err := h(hctx, e)
		cancel()

		r.metrics.TriggerHandled(string(e.Kind), err)
		if err != nil {
			r.log.Errorw("trigger_handler_failed", "kind", e.Kind, "err", err)
		}
	}
}
