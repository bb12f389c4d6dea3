package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartUpdatedPayload struct {
	UserID     string  `json:"user_id"`
	TotalItems int     `json:"total_items"`
	TotalPrice float64 `json:"total_price"`
}

func TestNewEvent_PopulatesEnvelope(t *testing.T) {
	payload := cartUpdatedPayload{UserID: "user-42", TotalItems: 3, TotalPrice: 59.97}

	evt, err := NewEvent("cart.updated", "user-42", "cart", "storefront", payload)
	require.NoError(t, err)

	assert.Equal(t, "cart.updated", evt.EventType)
	assert.Equal(t, "user-42", evt.AggregateID)
	assert.Equal(t, "cart", evt.AggregateType)
	assert.Equal(t, "storefront", evt.Source)
	assert.Equal(t, 1, evt.Version)
	assert.WithinDuration(t, time.Now().UTC(), evt.Timestamp, time.Minute)

	_, err = uuid.Parse(evt.EventID)
	assert.NoError(t, err, "event ID must be a UUID")
}

func TestNewEvent_UnmarshalableDataFails(t *testing.T) {
	_, err := NewEvent("cart.updated", "user-1", "cart", "storefront", make(chan int))
	assert.Error(t, err)
}

func TestEvent_DataRoundTrip(t *testing.T) {
	in := cartUpdatedPayload{UserID: "user-7", TotalItems: 1, TotalPrice: 19.99}
	evt, err := NewEvent("cart.updated", "user-7", "cart", "storefront", in)
	require.NoError(t, err)

	var out cartUpdatedPayload
	require.NoError(t, evt.UnmarshalData(&out))
	assert.Equal(t, in, out)
}

func TestEvent_WireRoundTrip(t *testing.T) {
	evt, err := NewEvent("cart.cleared", "user-9", "cart", "storefront",
		map[string]string{"user_id": "user-9"})
	require.NoError(t, err)
	evt.WithCorrelationID("corr-checkout-1").WithMetadata("region", "eu-west")

	raw, err := evt.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, evt.EventID, got.EventID)
	assert.Equal(t, "corr-checkout-1", got.CorrelationID)
	assert.Equal(t, "eu-west", got.Metadata["region"])
}

func TestEvent_CorrelationIDOmittedWhenUnset(t *testing.T) {
	evt, err := NewEvent("cart.updated", "user-3", "cart", "storefront",
		cartUpdatedPayload{UserID: "user-3"})
	require.NoError(t, err)

	raw, err := evt.Marshal()
	require.NoError(t, err)

	var asMap map[string]any
	require.NoError(t, json.Unmarshal(raw, &asMap))
	_, present := asMap["correlation_id"]
	assert.False(t, present)
}

func TestEvent_WithMetadataAllocatesMap(t *testing.T) {
	evt := &Event{}
	evt.WithMetadata("attempt", "2")
	assert.Equal(t, "2", evt.Metadata["attempt"])
}

func TestUnmarshalEvent_RejectsGarbage(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{broken"))
	assert.Error(t, err)
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"kafka-1:9092", "kafka-2:9092"})

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async, "cart events need synchronous delivery errors")
}

func TestPingBrokers_NoBrokersConfigured(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestPingBrokers_UnreachableBroker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := PingBrokers(ctx, []string{"127.0.0.1:1"})
	assert.Error(t, err)
}
