// Package router maps review rules to the verification agents they require.
// The tables are static and side-effect free: routing never consults the
// rule registry, which lets the planner cross-check the two independently.
//
// Routing:
//   - IDENTITY_VERIFICATION -> identity
//   - INCOME_VALIDATION     -> income
//   - FRAUD_CHECK           -> fraud (identity + income run first)
//   - HIGH_RISK_PROFILE     -> identity + income + fraud
package router

import (
	"fmt"
	"strings"

	"uwgate/internal/rules"
)

// UnknownRuleError reports a review rule outside the closed vocabulary.
// It names the valid set so operators can spot typos immediately.
type UnknownRuleError struct {
	Rule string
}

func (e *UnknownRuleError) Error() string {
	valid := make([]string, 0, len(rules.AllReviewRules()))
	for _, r := range rules.AllReviewRules() {
		valid = append(valid, string(r))
	}
	return fmt.Sprintf("unknown review rule %q, valid rules: [%s]", e.Rule, strings.Join(valid, ", "))
}

// routingMap assigns primary agents per review rule.
var routingMap = map[rules.ReviewRule][]rules.AgentKind{
	rules.RuleIdentityVerification: {rules.AgentIdentity},
	rules.RuleIncomeValidation:     {rules.AgentIncome},
	rules.RuleFraudCheck:           {rules.AgentFraud},
	rules.RuleHighRiskProfile:      {rules.AgentIdentity, rules.AgentIncome, rules.AgentFraud},
}

// prerequisites lists agents that must run before a rule's primary agents.
// FRAUD_CHECK depends on identity and income findings; HIGH_RISK_PROFILE is
// already exhaustive and needs none.
var prerequisites = map[rules.ReviewRule][]rules.AgentKind{
	rules.RuleFraudCheck: {rules.AgentIdentity, rules.AgentIncome},
}

// riskLevels fixes the risk classification per review rule.
var riskLevels = map[rules.ReviewRule]rules.RiskLevel{
	rules.RuleIdentityVerification: rules.RiskHigh,
	rules.RuleIncomeValidation:     rules.RiskMedium,
	rules.RuleFraudCheck:           rules.RiskCritical,
	rules.RuleHighRiskProfile:      rules.RiskHigh,
}

// RequiredAgents returns the agents a review rule requires, in execution
// order and free of duplicates. With includePrerequisites, prerequisite
// agents are emitted first in their declared order.
func RequiredAgents(rule rules.ReviewRule, includePrerequisites bool) ([]rules.AgentKind, error) {
	primary, ok := routingMap[rule]
	if !ok {
		return nil, &UnknownRuleError{Rule: string(rule)}
	}

	agents := make([]rules.AgentKind, 0, 3)
	seen := make(map[rules.AgentKind]struct{}, 3)
	appendAgent := func(a rules.AgentKind) {
		if _, dup := seen[a]; dup {
			return
		}
		seen[a] = struct{}{}
		agents = append(agents, a)
	}

	if includePrerequisites {
		for _, a := range prerequisites[rule] {
			appendAgent(a)
		}
	}
	for _, a := range primary {
		appendAgent(a)
	}

	return agents, nil
}

// RequiresPrerequisites reports whether a rule has prerequisite agents.
func RequiresPrerequisites(rule rules.ReviewRule) bool {
	_, ok := prerequisites[rule]
	return ok
}

// Prerequisites returns the prerequisite agents for a rule in declared order.
func Prerequisites(rule rules.ReviewRule) []rules.AgentKind {
	pre := prerequisites[rule]
	out := make([]rules.AgentKind, len(pre))
	copy(out, pre)
	return out
}

// RiskLevel returns the fixed risk classification for a review rule.
// Unknown rules error; there is deliberately no default level.
func RiskLevel(rule rules.ReviewRule) (rules.RiskLevel, error) {
	level, ok := riskLevels[rule]
	if !ok {
		return "", &UnknownRuleError{Rule: string(rule)}
	}
	return level, nil
}

// IsCritical reports whether a rule carries the CRITICAL risk level.
func IsCritical(rule rules.ReviewRule) (bool, error) {
	level, err := RiskLevel(rule)
	if err != nil {
		return false, err
	}
	return level == rules.RiskCritical, nil
}

// RuleRouting summarizes the routing configuration for one rule.
type RuleRouting struct {
	Rule           rules.ReviewRule  `json:"rule"`
	PrimaryAgents  []rules.AgentKind `json:"primary_agents"`
	Prerequisites  []rules.AgentKind `json:"prerequisites"`
	ExecutionOrder []rules.AgentKind `json:"execution_order"`
	RiskLevel      rules.RiskLevel   `json:"risk_level"`
	IsCritical     bool              `json:"is_critical"`
}

// Summary returns the complete routing configuration for every rule.
func Summary() []RuleRouting {
	out := make([]RuleRouting, 0, len(rules.AllReviewRules()))
	for _, rule := range rules.AllReviewRules() {
		order, _ := RequiredAgents(rule, true)
		level := riskLevels[rule]
		out = append(out, RuleRouting{
			Rule:           rule,
			PrimaryAgents:  append([]rules.AgentKind(nil), routingMap[rule]...),
			Prerequisites:  Prerequisites(rule),
			ExecutionOrder: order,
			RiskLevel:      level,
			IsCritical:     level == rules.RiskCritical,
		})
	}
	return out
}
