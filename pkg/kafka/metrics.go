package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "marketplace"

// Consumer results.
const (
	resultProcessed   = "processed"
	resultFailed      = "failed"
	resultUndecodable = "undecodable"
)

// Publish results.
const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	messagesConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "kafka",
		Name:      "messages_consumed_total",
		Help:      "Kafka messages fetched by consumer groups, by handling result.",
	}, []string{"topic", "group", "result"})

	handlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "kafka",
		Name:      "handler_duration_seconds",
		Help:      "Time spent in event handlers, retries included.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"topic", "group"})

	messagesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "kafka",
		Name:      "messages_skipped_total",
		Help:      "Events dropped by consumer filters before reaching the handler.",
	}, []string{"event_type", "reason"})

	messagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "kafka",
		Name:      "messages_published_total",
		Help:      "Kafka publish attempts, by result.",
	}, []string{"topic", "result"})

	publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "kafka",
		Name:      "publish_duration_seconds",
		Help:      "Latency of Kafka writes.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"topic"})
)
