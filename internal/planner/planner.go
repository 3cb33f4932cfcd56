// Package planner merges the agent requirements of simultaneously-active
// review rules into one ordered, deduplicated execution plan, and
// cross-checks compiled registry content against the static router tables.
package planner

import (
	"fmt"
	"sort"

	"uwgate/internal/router"
	"uwgate/internal/rules"
	"uwgate/internal/rules/registry"
)

// RuleDetail records one rule's contribution to a plan.
type RuleDetail struct {
	Rule       rules.ReviewRule  `json:"rule"`
	RiskLevel  rules.RiskLevel   `json:"risk_level"`
	Agents     []rules.AgentKind `json:"agents"`
	IsCritical bool              `json:"is_critical"`
}

// ExecutionPlan is a merged, dependency-correct agent sequence for a set of
// active review rules.
type ExecutionPlan struct {
	ExecutionOrder   []rules.AgentKind  `json:"execution_order"`
	TotalAgents      int                `json:"total_agents"`
	RulesByPriority  []rules.ReviewRule `json:"rules_by_priority"`
	RuleDetails      []RuleDetail       `json:"rule_details"`
	HasCriticalRules bool               `json:"has_critical_rules"`
}

// Plan computes the execution plan for the given active rules.
//
// Rules are stably sorted by descending priority (CRITICAL first), then each
// rule's agents (prerequisites included) are appended to a single global
// sequence, first-seen-wins: an agent required by a higher-priority rule is
// never re-ordered by a later one. Plan is a pure function of its inputs and
// is safe for unrestricted concurrent use.
func Plan(activeRules []rules.ReviewRule) (*ExecutionPlan, error) {
	// Validate every name up front so sorting never sees an unknown rule.
	levels := make(map[rules.ReviewRule]rules.RiskLevel, len(activeRules))
	for _, rule := range activeRules {
		level, err := router.RiskLevel(rule)
		if err != nil {
			return nil, err
		}
		levels[rule] = level
	}

	sorted := make([]rules.ReviewRule, len(activeRules))
	copy(sorted, activeRules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return levels[sorted[i]].Priority() < levels[sorted[j]].Priority()
	})

	plan := &ExecutionPlan{
		ExecutionOrder:  make([]rules.AgentKind, 0, len(rules.AllAgentKinds())),
		RulesByPriority: sorted,
		RuleDetails:     make([]RuleDetail, 0, len(sorted)),
	}

	seen := make(map[rules.AgentKind]struct{}, len(rules.AllAgentKinds()))
	for _, rule := range sorted {
		agents, err := router.RequiredAgents(rule, true)
		if err != nil {
			return nil, err
		}
		for _, agent := range agents {
			if _, dup := seen[agent]; dup {
				continue
			}
			seen[agent] = struct{}{}
			plan.ExecutionOrder = append(plan.ExecutionOrder, agent)
		}

		level := levels[rule]
		critical := level == rules.RiskCritical
		plan.RuleDetails = append(plan.RuleDetails, RuleDetail{
			Rule:       rule,
			RiskLevel:  level,
			Agents:     agents,
			IsCritical: critical,
		})
		if critical {
			plan.HasCriticalRules = true
		}
	}

	plan.TotalAgents = len(plan.ExecutionOrder)
	return plan, nil
}

// ValidateRegistry cross-checks every compiled rule against the router's
// static tables. Mismatches are reported as per-rule warnings, never errors:
// the system stays usable in a degraded state, but every deviation between
// the two sources of truth must be visible to operators.
func ValidateRegistry(reg *registry.Registry) map[rules.ReviewRule][]string {
	warnings := make(map[rules.ReviewRule][]string, reg.Len())

	for _, name := range reg.List() {
		var ruleWarnings []string

		rule, err := reg.Get(name)
		if err != nil {
			warnings[name] = []string{err.Error()}
			continue
		}

		expected, err := router.RequiredAgents(name, false)
		if err != nil {
			warnings[name] = []string{err.Error()}
			continue
		}

		if !sameAgentSet(rule.RequiredAgents, expected) {
			ruleWarnings = append(ruleWarnings, fmt.Sprintf(
				"agent mismatch: expected %v, got %v", expected, rule.RequiredAgents))
		}

		expectedLevel, err := router.RiskLevel(name)
		if err == nil && rule.RiskLevel != expectedLevel {
			ruleWarnings = append(ruleWarnings, fmt.Sprintf(
				"risk level mismatch: expected %s, got %s", expectedLevel, rule.RiskLevel))
		}

		warnings[name] = ruleWarnings
	}

	return warnings
}

// sameAgentSet compares two agent lists as sets.
func sameAgentSet(a, b []rules.AgentKind) bool {
	set := make(map[rules.AgentKind]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	if len(set) != len(b) {
		return false
	}
	for _, k := range b {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}
