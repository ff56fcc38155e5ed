package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
)

// ProducerConfig configures the underlying kafka.Writer.
type ProducerConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	Async        bool
}

// DefaultProducerConfig writes synchronously in small, fast batches.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes Event envelopes.
type Producer struct {
	writer  messageWriter
	brokers []string
	logger  *slog.Logger
}

// NewProducer builds a Producer. The brokers are first contacted on publish.
func NewProducer(cfg ProducerConfig, l *slog.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		Async:                  cfg.Async,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, cfg.Brokers, l)
}

func newProducer(w messageWriter, brokers []string, l *slog.Logger) *Producer {
	if l == nil {
		l = logger.Nop()
	}
	return &Producer{writer: w, brokers: brokers, logger: logger.Component(l, "kafka_producer")}
}

// Publish writes event to topic keyed by its aggregate ID, which keeps the
// events of one car ordered on a single partition.
func (p *Producer) Publish(ctx context.Context, topic string, event *Event) error {
	msg, err := encode(ctx, topic, event)
	if err != nil {
		return err
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	publishDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	if err != nil {
		messagesPublished.WithLabelValues(topic, resultError).Inc()
		p.logger.ErrorContext(ctx, "publish failed",
			slog.String("topic", topic),
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish event to %s: %w", topic, err)
	}

	messagesPublished.WithLabelValues(topic, resultOK).Inc()
	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", topic),
		slog.String("event_id", event.EventID),
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}

// encode builds the message for event. Identity headers let consumers
// filter without decoding the body; the trace context rides along too.
func encode(ctx context.Context, topic string, event *Event) (kafka.Message, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{Topic: topic, Key: []byte(event.AggregateID), Value: body}

	carrier := NewHeaderCarrier(&msg.Headers)
	carrier.Set("event_id", event.EventID)
	carrier.Set("event_type", event.EventType)
	carrier.Set("source", event.Source)
	if event.CorrelationID != "" {
		carrier.Set("correlation_id", event.CorrelationID)
	}
	injectTrace(ctx, &msg)
	return msg, nil
}

// Ping checks that one of the producer's brokers answers.
func (p *Producer) Ping(ctx context.Context) error {
	return PingBrokers(ctx, p.brokers)
}

// PingBrokers succeeds as soon as one broker answers a metadata request.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}
	var errs []error
	for _, addr := range brokers {
		if err := pingBroker(ctx, addr); err != nil {
			errs = append(errs, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka ping: all brokers unreachable: %w", errors.Join(errs...))
}

func pingBroker(ctx context.Context, addr string) error {
	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Brokers()
	return err
}

// Close flushes pending messages.
func (p *Producer) Close() error {
	return p.writer.Close()
}
