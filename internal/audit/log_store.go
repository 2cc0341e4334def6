package audit

import (
	"context"
	"log/slog"
)

// LogStore writes events to a structured logger.
type LogStore struct {
	logger *slog.Logger
}

func NewLogStore(logger *slog.Logger) *LogStore {
	return &LogStore{logger: logger}
}

func (s *LogStore) Append(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, "metadata extraction",
		"request_id", event.RequestID,
		"path", event.Path,
		"fields", event.Fields,
		"outcome", event.Outcome,
		"attribute_count", event.AttributeCount,
		"duration_ms", event.Duration.Milliseconds(),
		"client_ip", event.ClientIP,
	)
	return nil
}
