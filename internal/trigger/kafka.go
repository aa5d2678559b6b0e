package trigger

import (
	"clariasense/internal/logger"
	"clariasense/internal/metrics"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaBus publishes events as JSON to one topic and consumes them with a
// single consumer-group reader. Messages are committed after the handlers
// ran, successful or not.
type KafkaBus struct {
	*router
	writer messageWriter
	reader messageReader
	log    *logger.Logger
}

var _ Bus = (*KafkaBus)(nil)

func NewKafkaBus(cfg KafkaConfig, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) (*KafkaBus, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic must not be empty")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
	return newKafkaBus(w, r, timeout, log, m), nil
}

func newKafkaBus(w messageWriter, r messageReader, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *KafkaBus {
	log = logger.OrNop(log)
	return &KafkaBus{
		router: newRouter(timeout, log, m),
		writer: w,
		reader: r,
		log:    log,
	}
}

func (b *KafkaBus) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode trigger event: %w", err)
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.Kind), Value: payload}); err != nil {
		return fmt.Errorf("publish %s: %w", e.Kind, err)
	}
	return nil
}

// Run consumes until ctx is cancelled, then closes the reader and writer.
func (b *KafkaBus) Run(ctx context.Context) error {
	defer func() {
		if err := b.reader.Close(); err != nil {
			b.log.Errorw("kafka_reader_close", "err", err)
		}
		if err := b.writer.Close(); err != nil {
			b.log.Errorw("kafka_writer_close", "err", err)
		}
	}()

	backoff := time.Second
	for {
		msg, err := b.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			b.log.Errorw("kafka_fetch_failed", "err", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			continue
		}

		var e Event
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			b.log.Warnw("kafka_event_decode_failed", "offset", msg.Offset, "err", err)
		} else {
			b.dispatch(ctx, e)
		}

		if err := b.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			b.log.Errorw("kafka_commit_failed", "offset", msg.Offset, "err", err)
		}
	}
}
