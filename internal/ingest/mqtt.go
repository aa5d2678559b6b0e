// Package ingest subscribes to the rig's MQTT topics and feeds the values
// through the reading service.
package ingest

import (
	"clariasense/internal/logger"
	"clariasense/internal/models"
	"clariasense/internal/service"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	source         = "mqtt"
	sensorsSegment = "sensors"
	refillSegment  = "sensorForRefill"
	distanceKey    = "distance"

	connectTimeout = 10 * time.Second
	disconnectWait = 250 // ms
)

var errBadPayload = errors.New("payload is neither a number nor {\"value\": number}")

// Sink is the part of the reading service the subscriber writes to.
type Sink interface {
	Ingest(ctx context.Context, source string, values map[models.SensorID]float64) (service.IngestResult, error)
	WriteDistance(ctx context.Context, source string, distance float64) error
}

type Options struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	Username    string
	Password    string
}

// MQTTSubscriber forwards <prefix>/sensors/<id> and
// <prefix>/sensorForRefill/distance messages to a Sink.
type MQTTSubscriber struct {
	opts   Options
	sink   Sink
	log    *logger.Logger
	client mqtt.Client
}

func NewMQTTSubscriber(opts Options, sink Sink, log *logger.Logger) *MQTTSubscriber {
	opts.TopicPrefix = strings.Trim(opts.TopicPrefix, "/")
	return &MQTTSubscriber{opts: opts, sink: sink, log: logger.OrNop(log)}
}

// Start connects and subscribes. Messages are handled under ctx until Stop.
func (s *MQTTSubscriber) Start(ctx context.Context) error {
	co := mqtt.NewClientOptions().
		AddBroker(s.opts.Broker).
		SetClientID(s.opts.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	if s.opts.Username != "" {
		co.SetUsername(s.opts.Username)
		co.SetPassword(s.opts.Password)
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		s.handle(ctx, msg.Topic(), msg.Payload())
	}
	filters := map[string]byte{
		s.topic(sensorsSegment, "+"):        1,
		s.topic(refillSegment, distanceKey): 1,
	}
	// resubscribe after every reconnect
	co.SetOnConnectHandler(func(c mqtt.Client) {
		if token := c.SubscribeMultiple(filters, handler); token.Wait() && token.Error() != nil {
			s.log.Errorw("mqtt_subscribe_failed", "err", token.Error())
			return
		}
		s.log.Infow("mqtt_subscribed", "broker", s.opts.Broker, "prefix", s.opts.TopicPrefix)
	})
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.log.Warnw("mqtt_connection_lost", "err", err)
	})

	s.client = mqtt.NewClient(co)
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connect mqtt %s: timed out", s.opts.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect mqtt %s: %w", s.opts.Broker, err)
	}
	return nil
}

func (s *MQTTSubscriber) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(disconnectWait)
	}
}

func (s *MQTTSubscriber) topic(parts ...string) string {
	if s.opts.TopicPrefix == "" {
		return strings.Join(parts, "/")
	}
	return s.opts.TopicPrefix + "/" + strings.Join(parts, "/")
}

func (s *MQTTSubscriber) handle(ctx context.Context, topic string, payload []byte) {
	value, err := parsePayload(payload)
	if err != nil {
		s.log.Warnw("mqtt_payload_rejected", "topic", topic, "err", err)
		return
	}

	sensor, isDistance, ok := parseTopic(s.opts.TopicPrefix, topic)
	switch {
	case !ok:
		s.log.Warnw("mqtt_topic_ignored", "topic", topic)
	case isDistance:
		if err := s.sink.WriteDistance(ctx, source, value); err != nil {
			s.log.Errorw("mqtt_distance_failed", "value", value, "err", err)
		}
	default:
		if _, err := s.sink.Ingest(ctx, source, map[models.SensorID]float64{sensor: value}); err != nil {
			s.log.Errorw("mqtt_ingest_failed", "sensor", sensor, "value", value, "err", err)
		}
	}
}

// parseTopic maps a topic below prefix to a known sensor or to the refill
// distance. ok is false for anything else.
func parseTopic(prefix, topic string) (sensor models.SensorID, isDistance, ok bool) {
	rest := strings.Trim(topic, "/")
	if prefix != "" {
		if !strings.HasPrefix(rest, prefix+"/") {
			return "", false, false
		}
		rest = strings.TrimPrefix(rest, prefix+"/")
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return "", false, false
	}
	switch parts[0] {
	case sensorsSegment:
		id := models.SensorID(parts[1])
		if !id.Known() {
			return "", false, false
		}
		return id, false, true
	case refillSegment:
		return "", parts[1] == distanceKey, parts[1] == distanceKey
	}
	return "", false, false
}

// parsePayload accepts `7.2` or `{"value": 7.2}`.
func parsePayload(payload []byte) (float64, error) {
	text := strings.TrimSpace(string(payload))
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return v, nil
	}

	var body struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal([]byte(text), &body); err != nil || body.Value == nil {
		return 0, errBadPayload
	}
	return *body.Value, nil
}
