package trigger

import (
	"clariasense/internal/logger"
	"clariasense/internal/metrics"
	"context"
	"errors"
	"sync"
	"time"
)

var ErrBusStopped = errors.New("trigger bus stopped")

// LocalBus delivers events in-process through a buffered queue drained by a
// fixed pool of workers.
type LocalBus struct {
	*router
	queue   chan Event
	workers int
	done    chan struct{}
	once    sync.Once
}

var _ Bus = (*LocalBus)(nil)

func NewLocalBus(workers, buffer int, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *LocalBus {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &LocalBus{
		router:  newRouter(timeout, log, m),
		queue:   make(chan Event, buffer),
		workers: workers,
		done:    make(chan struct{}),
	}
}

// Publish enqueues e. It blocks while the queue is full.
func (b *LocalBus) Publish(ctx context.Context, e Event) error {
	select {
	case <-b.done:
		return ErrBusStopped
	default:
	}
	select {
	case b.queue <- e:
		return nil
	case <-b.done:
		return ErrBusStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the workers and blocks until ctx is cancelled and they have exited.
func (b *LocalBus) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case e := <-b.queue:
					b.dispatch(ctx, e)
				}
			}
		}()
	}
	<-ctx.Done()
	b.once.Do(func() { close(b.done) })
	wg.Wait()
	return nil
}
