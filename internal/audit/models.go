package audit

import (
	"context"
	"time"
)

// Outcome values recorded for extractions.
const (
	OutcomeSuccess = "success"
)

// Event records one metadata extraction. It is transport-agnostic so stores
// and sinks can fan out. Attribute values are never recorded: headers carry
// patient data.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	// Path is the requested container/key.
	Path string `json:"path"`
	// Fields is the number of attribute names requested; zero means all.
	Fields int `json:"fields"`
	// Outcome is "success" or the extraction error kind.
	Outcome        string        `json:"outcome"`
	AttributeCount int           `json:"attribute_count"`
	Duration       time.Duration `json:"duration_ns"`
	ClientIP       string        `json:"client_ip,omitempty"`
	UserAgent      string        `json:"user_agent,omitempty"`
}

// Store persists or forwards audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
