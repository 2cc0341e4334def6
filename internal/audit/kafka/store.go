// Package kafka forwards audit events to a Kafka topic, one record per event
// keyed by request ID.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/twmb/franz-go/pkg/kgo"

	"dicomviewer/internal/audit"
)

// Record encodings.
const (
	EncodingJSON = "json"
	EncodingCBOR = "cbor"
)

var cborMode = mustCBORMode()

func mustCBORMode() cbor.EncMode {
	mode, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}

// Producer is the subset of *kgo.Client used by Store.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Store produces one record per event.
type Store struct {
	producer    Producer
	topic       string
	contentType string
	encode      func(any) ([]byte, error)
}

// Option configures a Store.
type Option func(*Store)

// WithEncoding selects the record value encoding. Unknown values keep JSON.
func WithEncoding(encoding string) Option {
	return func(s *Store) {
		if encoding == EncodingCBOR {
			s.contentType = "application/cbor"
			s.encode = cborMode.Marshal
		}
	}
}

func NewStore(producer Producer, topic string, opts ...Option) *Store {
	s := &Store{
		producer:    producer,
		topic:       topic,
		contentType: "application/json",
		encode:      json.Marshal,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	value, err := s.encode(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.RequestID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "outcome", Value: []byte(event.Outcome)},
			{Key: "content-type", Value: []byte(s.contentType)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}
