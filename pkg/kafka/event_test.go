package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type carPayload struct {
	CarID string `json:"carId"`
	Price int    `json:"price"`
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "marketplace.car.created", Topic("car", "created"))
	assert.Equal(t, "marketplace.car.deleted", Topic("car", "deleted"))
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	event, err := NewEvent("evt-1", "marketplace.car.updated", "car-9", "car", "storefront-a", at,
		carPayload{CarID: "car-9", Price: 18500})
	require.NoError(t, err)

	assert.Equal(t, "evt-1", event.EventID)
	assert.Equal(t, "car-9", event.AggregateID)
	assert.Equal(t, 1, event.Version)
	assert.Equal(t, time.UTC, event.Timestamp.Location())
	assert.True(t, at.Equal(event.Timestamp))
	assert.JSONEq(t, `{"carId":"car-9","price":18500}`, string(event.Data))

	var payload carPayload
	require.NoError(t, event.UnmarshalData(&payload))
	assert.Equal(t, carPayload{CarID: "car-9", Price: 18500}, payload)
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent("evt-1", "marketplace.car.created", "car-1", "car", "s", time.Now(), func() {})
	assert.ErrorContains(t, err, "marshal marketplace.car.created payload")
}

func TestUnmarshalEvent(t *testing.T) {
	event, err := UnmarshalEvent([]byte(`{"event_id":"e1","event_type":"marketplace.car.deleted","aggregate_id":"c1","source":"b","data":{"carId":"c1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "e1", event.EventID)
	assert.Equal(t, "b", event.Source)

	for _, bad := range []string{"", "{", `{"event_id":1}`} {
		_, err := UnmarshalEvent([]byte(bad))
		assert.Error(t, err, "%q", bad)
	}
}

func TestEvent_UnmarshalDataMismatch(t *testing.T) {
	event := &Event{Data: []byte(`"not an object"`)}
	var payload carPayload
	assert.Error(t, event.UnmarshalData(&payload))
}
