package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
)

// maxHandlerRetries is how many times a handler runs for one message before
// the message is committed anyway.
const maxHandlerRetries = 3

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// ConsumerConfig configures a group consumer.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topics   []string
	MinBytes int
	MaxBytes int
	// RetryBackoff is multiplied by the attempt number between handler runs.
	RetryBackoff time.Duration
}

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer feeds the events of a consumer group to a Handler, one at a time.
type Consumer struct {
	reader    messageReader
	group     string
	backoff   time.Duration
	handler   Handler
	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewConsumer joins cfg.GroupID and subscribes to cfg.Topics, starting from
// the newest offset.
func NewConsumer(cfg ConsumerConfig, handler Handler, l *slog.Logger) *Consumer {
	return newConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		StartOffset: kafka.LastOffset,
	}), cfg, handler, l)
}

func newConsumer(r messageReader, cfg ConsumerConfig, handler Handler, l *slog.Logger) *Consumer {
	if l == nil {
		l = logger.Nop()
	}
	c := &Consumer{
		reader:  r,
		group:   cfg.GroupID,
		backoff: cfg.RetryBackoff,
		handler: handler,
		logger:  logger.Component(l, "kafka_consumer").With(slog.String("group", cfg.GroupID)),
	}
	if c.backoff <= 0 {
		c.backoff = 100 * time.Millisecond
	}
	return c
}

// Start blocks until ctx is canceled, then closes the reader. Every fetched
// message is committed once handled, including messages that cannot be
// decoded and messages whose handler kept failing.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.logger.Info("consumer stopped")

	for ctx.Err() == nil {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Error("fetch failed", slog.String("error", err.Error()))
				wait(ctx, c.backoff)
			}
			continue
		}

		result := c.process(ctx, msg)
		if ctx.Err() != nil && result == resultFailed {
			// Interrupted between retries; leave it uncommitted for the next member.
			break
		}
		messagesConsumed.WithLabelValues(msg.Topic, c.group, result).Inc()
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("commit failed",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
	return c.Close()
}

// process decodes msg and runs the handler up to maxHandlerRetries times.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) string {
	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.Error("dropping undecodable message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return resultUndecodable
	}

	hctx := extractTrace(ctx, msg)
	log := c.logger.With(
		slog.String("topic", msg.Topic),
		slog.String("event_id", event.EventID),
		slog.String("event_type", event.EventType),
	)

	start := time.Now()
	defer func() {
		handlerDuration.WithLabelValues(msg.Topic, c.group).Observe(time.Since(start).Seconds())
	}()

	for attempt := 1; ; attempt++ {
		err := c.handler(hctx, event)
		if err == nil {
			return resultProcessed
		}
		if attempt == maxHandlerRetries {
			log.ErrorContext(hctx, "handler gave up, skipping event",
				slog.Int("attempts", attempt),
				slog.String("error", err.Error()),
			)
			return resultFailed
		}
		log.WarnContext(hctx, "handler failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		if !wait(ctx, time.Duration(attempt)*c.backoff) {
			return resultFailed
		}
	}
}

// Close closes the reader once; later calls return the first result.
func (c *Consumer) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.reader.Close()
	})
	return c.closeErr
}

// wait sleeps for d and reports false if ctx ended first.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
