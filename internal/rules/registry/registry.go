// Package registry holds compiled structured rules keyed by review rule.
// A registry is immutable once built; refresh replaces the whole snapshot
// through an atomic pointer swap so concurrent readers never observe a
// half-updated rule set.
package registry

import (
	"sync/atomic"

	"uwgate/internal/rules"
	dErrors "uwgate/pkg/domain-errors"
)

// Registry is an immutable mapping from review rule to structured rule.
type Registry struct {
	entries map[rules.ReviewRule]rules.StructuredRule
	names   []rules.ReviewRule
}

// New builds a registry from compiled rules. Every entry is schema-validated
// and every key must be in the closed rule vocabulary; a single malformed
// entry fails the whole build (fail-closed, never partial-load).
func New(entries map[rules.ReviewRule]rules.StructuredRule) (*Registry, error) {
	validated := make(map[rules.ReviewRule]rules.StructuredRule, len(entries))
	names := make([]rules.ReviewRule, 0, len(entries))

	// Iterate the closed vocabulary so name order is deterministic.
	for _, name := range rules.AllReviewRules() {
		rule, ok := entries[name]
		if !ok {
			continue
		}
		if err := rules.Validate(&rule); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation,
				"rule "+string(name)+" failed schema validation")
		}
		validated[name] = rule
		names = append(names, name)
	}

	for name := range entries {
		if !name.IsValid() {
			return nil, dErrors.Newf(dErrors.CodeValidation,
				"registry contains unknown review rule %q", name)
		}
	}

	return &Registry{entries: validated, names: names}, nil
}

// Get returns a copy of the structured rule for a review rule.
func (r *Registry) Get(name rules.ReviewRule) (rules.StructuredRule, error) {
	if !name.IsValid() {
		return rules.StructuredRule{}, dErrors.Newf(dErrors.CodeInvalidInput,
			"unknown review rule %q", name)
	}
	rule, ok := r.entries[name]
	if !ok {
		return rules.StructuredRule{}, dErrors.Newf(dErrors.CodeNotFound,
			"no compiled rule for %q", name)
	}
	return cloneRule(rule), nil
}

// List returns the review rules present in the registry, in vocabulary order.
func (r *Registry) List() []rules.ReviewRule {
	out := make([]rules.ReviewRule, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of compiled rules.
func (r *Registry) Len() int { return len(r.entries) }

// cloneRule deep-copies a rule so callers can never mutate registry state.
func cloneRule(rule rules.StructuredRule) rules.StructuredRule {
	out := rule
	out.RequiredAgents = append([]rules.AgentKind(nil), rule.RequiredAgents...)
	out.Checks = make([]rules.CheckConfig, len(rule.Checks))
	for i, c := range rule.Checks {
		cc := c
		if c.Threshold != nil {
			t := *c.Threshold
			if c.Threshold.Number != nil {
				n := *c.Threshold.Number
				t.Number = &n
			}
			cc.Threshold = &t
		}
		out.Checks[i] = cc
	}
	out.DecisionCriteria.ZeroToleranceChecks = append([]string(nil), rule.DecisionCriteria.ZeroToleranceChecks...)
	if rule.DecisionCriteria.DTIThreshold != nil {
		d := *rule.DecisionCriteria.DTIThreshold
		out.DecisionCriteria.DTIThreshold = &d
	}
	return out
}

// Snapshot publishes the current registry to concurrent readers and lets a
// refresh swap in a brand-new instance atomically.
type Snapshot struct {
	current atomic.Pointer[Registry]
}

// NewSnapshot creates a snapshot holder seeded with an initial registry.
func NewSnapshot(reg *Registry) *Snapshot {
	s := &Snapshot{}
	s.current.Store(reg)
	return s
}

// Current returns the registry readers should use for this operation.
func (s *Snapshot) Current() *Registry {
	return s.current.Load()
}

// Swap replaces the published registry. In-flight readers keep the snapshot
// they already loaded.
func (s *Snapshot) Swap(reg *Registry) {
	s.current.Store(reg)
}
