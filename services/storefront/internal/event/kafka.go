package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pkgkafka "github.com/limosnd/Marketplace-go-grahpql/pkg/kafka"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// AggregateTypeCar is the aggregate type of every car event.
const AggregateTypeCar = "car"

// IdempotencyTTL is how long consumed event ids are remembered.
const IdempotencyTTL = time.Hour

// Kafka topics for car events.
var (
	TopicCarCreated = pkgkafka.Topic(AggregateTypeCar, string(TypeCreated))
	TopicCarUpdated = pkgkafka.Topic(AggregateTypeCar, string(TypeUpdated))
	TopicCarDeleted = pkgkafka.Topic(AggregateTypeCar, string(TypeDeleted))
)

// CarTopics lists every car topic.
func CarTopics() []string {
	return []string{TopicCarCreated, TopicCarUpdated, TopicCarDeleted}
}

// ConsumerGroupID is the group of a storefront instance. Each instance reads
// every event, so the group is per instance.
func ConsumerGroupID(instanceID string) string {
	return "storefront-" + instanceID
}

// CarEventData is the payload of a car event envelope.
type CarEventData struct {
	CarID string      `json:"car_id"`
	Car   *domain.Car `json:"car,omitempty"`
}

// Publisher is the subset of *pkgkafka.Producer the sink needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// KafkaSink writes local car events to Kafka.
type KafkaSink struct {
	producer Publisher
	source   string
}

var _ Sink = (*KafkaSink)(nil)

// NewKafkaSink creates a sink stamping envelopes with source.
func NewKafkaSink(producer Publisher, source string) *KafkaSink {
	return &KafkaSink{producer: producer, source: source}
}

// Send publishes ev. The envelope reuses the event id and timestamp so
// consumers can deduplicate across transports.
func (s *KafkaSink) Send(ctx context.Context, ev CarEvent) error {
	topic := pkgkafka.Topic(AggregateTypeCar, string(ev.Type))
	envelope, err := pkgkafka.NewEvent(ev.ID, topic, ev.CarID, AggregateTypeCar, s.source, ev.At,
		CarEventData{CarID: ev.CarID, Car: ev.Car})
	if err != nil {
		return err
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		envelope.WithCorrelationID(id)
	}
	if err := s.producer.Publish(ctx, topic, envelope); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// DecodeKafkaEvent turns an envelope back into a CarEvent.
func DecodeKafkaEvent(envelope *pkgkafka.Event) (CarEvent, error) {
	var t Type
	switch envelope.EventType {
	case TopicCarCreated:
		t = TypeCreated
	case TopicCarUpdated:
		t = TypeUpdated
	case TopicCarDeleted:
		t = TypeDeleted
	default:
		return CarEvent{}, fmt.Errorf("unknown car event type %q", envelope.EventType)
	}

	var data CarEventData
	if err := envelope.UnmarshalData(&data); err != nil {
		return CarEvent{}, fmt.Errorf("decode %s payload: %w", envelope.EventType, err)
	}
	if data.CarID == "" {
		data.CarID = envelope.AggregateID
	}
	if data.CarID == "" {
		return CarEvent{}, fmt.Errorf("%s event %s has no car id", envelope.EventType, envelope.EventID)
	}
	if t != TypeDeleted && data.Car == nil {
		return CarEvent{}, fmt.Errorf("%s event %s has no car", envelope.EventType, envelope.EventID)
	}
	if t == TypeDeleted {
		data.Car = nil
	}

	return CarEvent{
		ID:    envelope.EventID,
		Type:  t,
		CarID: data.CarID,
		Car:   data.Car,
		At:    envelope.Timestamp,
	}, nil
}

// RemotePublisher accepts events from other processes.
type RemotePublisher interface {
	PublishRemote(ctx context.Context, ev CarEvent)
}

// NewSourceHandler builds the Kafka handler that re-publishes car events of
// other instances locally. Events from source are skipped and duplicates are
// dropped by event id. Undecodable events are logged and acknowledged.
func NewSourceHandler(target RemotePublisher, source string, store pkgkafka.IdempotencyStore, log *slog.Logger) pkgkafka.Handler {
	log = logger.Component(log, "car_event_source")
	inner := func(ctx context.Context, envelope *pkgkafka.Event) error {
		ev, err := DecodeKafkaEvent(envelope)
		if err != nil {
			log.WarnContext(ctx, "skipping malformed car event",
				slog.String("event_id", envelope.EventID),
				slog.String("event_type", envelope.EventType),
				slog.String("error", err.Error()),
			)
			return nil
		}
		log.DebugContext(ctx, "received remote car event",
			slog.String("event_id", ev.ID),
			slog.String("type", string(ev.Type)),
			slog.String("car_id", ev.CarID),
			slog.String("source", envelope.Source),
		)
		target.PublishRemote(ctx, ev)
		return nil
	}
	return pkgkafka.SkipSource(source, pkgkafka.IdempotentHandler(store, inner, log))
}

// KafkaSource consumes car events published by other storefront instances.
type KafkaSource struct {
	consumer *pkgkafka.Consumer
}

// NewKafkaSource creates a source for instanceID reading from brokers.
// Consumed event ids go to seen, or to memory when seen is nil.
func NewKafkaSource(brokers []string, instanceID string, target RemotePublisher, seen pkgkafka.IdempotencyStore, log *slog.Logger) *KafkaSource {
	if seen == nil {
		seen = pkgkafka.NewMemoryIdempotencyStore(IdempotencyTTL)
	}
	handler := NewSourceHandler(target, instanceID, seen, log)
	consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:      brokers,
		GroupID:      ConsumerGroupID(instanceID),
		Topics:       CarTopics(),
		MinBytes:     1,
		MaxBytes:     1 << 20,
		RetryBackoff: 200 * time.Millisecond,
	}, handler, log)
	return &KafkaSource{consumer: consumer}
}

// Start consumes until ctx is done.
func (s *KafkaSource) Start(ctx context.Context) error {
	return s.consumer.Start(ctx)
}

// Close stops the consumer.
func (s *KafkaSource) Close() error {
	return s.consumer.Close()
}
