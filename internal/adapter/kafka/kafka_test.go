package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/storm-data-verify/internal/ingest"
)

func TestMapMessageToRawMessage(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("batch-1"),
		Value:     []byte(`{"id":"batch-1"}`),
		Topic:     "forecast-pairs",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("hefs")},
		},
	}

	raw := mapMessageToRawMessage(msg)

	assert.Equal(t, []byte("batch-1"), raw.Key)
	assert.JSONEq(t, `{"id":"batch-1"}`, string(raw.Value))
	assert.Equal(t, "forecast-pairs", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "hefs", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	msg := serializeToMessage(ingest.OutputMessage{
		Key:   []byte("DRRC2"),
		Value: []byte(`{"metric":"mean_error"}`),
		Headers: map[string]string{
			"processed_at": "2024-04-26T15:10:00Z",
			"metric":       "mean_error",
		},
	})

	assert.Equal(t, []byte("DRRC2"), msg.Key)
	assert.JSONEq(t, `{"metric":"mean_error"}`, string(msg.Value))
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "metric", msg.Headers[0].Key)
	assert.Equal(t, []byte("mean_error"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[1].Value)
}

func TestSerializeToMessage_NoHeaders(t *testing.T) {
	msg := serializeToMessage(ingest.OutputMessage{Key: []byte("k"), Value: []byte("{}")})
	assert.Empty(t, msg.Headers)
}
