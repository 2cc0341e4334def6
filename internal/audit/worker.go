package audit

import (
	"context"
	"log/slog"
	"time"
)

// appendTimeout bounds each async store write.
const appendTimeout = 5 * time.Second

// Worker consumes audit events from a channel and hands them to a store
// until the channel is closed.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run blocks until inbox is closed and drained. Store failures are logged and
// the event dropped.
func (w *Worker) Run() {
	for event := range w.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		if err := w.store.Append(ctx, event); err != nil {
			w.logger.Warn("failed to deliver audit event",
				"request_id", event.RequestID,
				"error", err,
			)
		}
		cancel()
	}
}
