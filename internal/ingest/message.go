package ingest

import (
	"context"
	"time"
)

// RawMessage is a message read from the source topic, before decoding.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Headers   map[string]string

	// Commit acknowledges the message. Nil when the source has no offsets.
	Commit func(ctx context.Context) error
}

// OutputMessage is a serialized output ready for the sink topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
