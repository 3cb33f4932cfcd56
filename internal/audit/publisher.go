package audit

import (
	"context"
	"log/slog"
)

// Publisher is the enqueue side of the audit pipeline. Emit never blocks the
// decision path: when the inbox is full the event is dropped and logged, and
// underwriting continues.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, e Event) {
	select {
	case p.inbox <- e:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"event_id", e.ID,
			"kind", e.Kind,
			"application_id", e.ApplicationID,
		)
	}
}
