// Package audit emits decision lifecycle events to the event bus so
// downstream systems (compliance archive, analytics) see every terminal
// underwriting outcome.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds emitted by the underwriting pipeline.
const (
	KindDecisionFinalized = "decision.finalized"
	KindRegistrySwapped   = "registry.swapped"
)

// Event is one audit record. Events are immutable once constructed.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Kind          string    `json:"kind"`
	ApplicationID string    `json:"application_id,omitempty"`
	Decision      string    `json:"decision,omitempty"`
	Confidence    float64   `json:"confidence,omitempty"`
	RulesApplied  []string  `json:"rules_applied,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent constructs an event with identity and timestamp filled in.
func NewEvent(kind string) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
	}
}
