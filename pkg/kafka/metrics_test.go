package kafka

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Registered(t *testing.T) {
	messagesConsumed.WithLabelValues("registered-topic", "registered-group", resultProcessed)
	handlerDuration.WithLabelValues("registered-topic", "registered-group")
	messagesSkipped.WithLabelValues("registered.event", "duplicate")
	messagesPublished.WithLabelValues("registered-topic", resultOK)
	publishDuration.WithLabelValues("registered-topic")

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	var names []string
	for _, fam := range families {
		names = append(names, fam.GetName())
	}

	assert.Subset(t, names, []string{
		"marketplace_kafka_messages_consumed_total",
		"marketplace_kafka_handler_duration_seconds",
		"marketplace_kafka_messages_skipped_total",
		"marketplace_kafka_messages_published_total",
		"marketplace_kafka_publish_duration_seconds",
	})
}

func TestMessagesSkipped_ByReason(t *testing.T) {
	own := messagesSkipped.WithLabelValues("skip.test", "own_source")
	dup := messagesSkipped.WithLabelValues("skip.test", "duplicate")
	beforeOwn, beforeDup := testutil.ToFloat64(own), testutil.ToFloat64(dup)

	own.Inc()

	assert.Equal(t, beforeOwn+1, testutil.ToFloat64(own))
	assert.Equal(t, beforeDup, testutil.ToFloat64(dup))
}
