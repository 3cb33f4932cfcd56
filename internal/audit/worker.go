package audit

import (
	"context"
	"log/slog"
)

// Worker drains audit events from the inbox into the sink. Delivery failures
// are logged and skipped: audit is best-effort and must never stall the
// decision pipeline behind a slow broker.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run consumes until the context is cancelled, then drains whatever is
// already buffered before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.deliver(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event Event) {
	if err := w.sink.Deliver(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "audit delivery failed",
			"event_id", event.ID,
			"kind", event.Kind,
			"error", err,
		)
	}
}
