// Package store provides decision persistence: an in-memory store for tests
// and single-node runs, a Postgres store for durable audit history, and a
// Redis cache fronting lookups.
package store

import (
	"context"
	"sync"

	"uwgate/internal/underwriting/models"
	"uwgate/pkg/domain"
	dErrors "uwgate/pkg/domain-errors"
)

// Memory keeps the latest decision per application in process memory.
type Memory struct {
	mu        sync.RWMutex
	decisions map[domain.ApplicationID]models.UnderwritingDecision
}

// NewMemory creates an empty in-memory decision store.
func NewMemory() *Memory {
	return &Memory{decisions: make(map[domain.ApplicationID]models.UnderwritingDecision)}
}

// Save records a decision, replacing any earlier decision for the same
// application.
func (m *Memory) Save(_ context.Context, d *models.UnderwritingDecision) error {
	if d == nil || d.ApplicationID.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "decision must carry an application id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[d.ApplicationID] = clone(d)
	return nil
}

// GetByApplication returns the latest decision for an application.
func (m *Memory) GetByApplication(_ context.Context, id domain.ApplicationID) (*models.UnderwritingDecision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.decisions[id]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no decision recorded for application %q", id)
	}
	out := clone(&d)
	return &out, nil
}

// Len reports how many applications have a recorded decision.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.decisions)
}

// clone copies a decision so callers can never mutate stored state.
func clone(d *models.UnderwritingDecision) models.UnderwritingDecision {
	out := *d
	out.Findings = append([]models.AgentFinding(nil), d.Findings...)
	out.RulesApplied = append(out.RulesApplied[:0:0], d.RulesApplied...)
	return out
}
