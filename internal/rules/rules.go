// Package rules defines the structured-rule data model: the compiled,
// machine-checkable representation of an underwriting policy document, plus
// the closed enumerations shared by the router, planner, and aggregator.
package rules

import (
	"strings"

	dErrors "uwgate/pkg/domain-errors"
)

// ReviewRule names a policy category that determines which agents and checks
// apply to an application. The set is fixed and closed; any name outside it
// is an error at every boundary.
type ReviewRule string

const (
	RuleIdentityVerification ReviewRule = "IDENTITY_VERIFICATION"
	RuleIncomeValidation     ReviewRule = "INCOME_VALIDATION"
	RuleFraudCheck           ReviewRule = "FRAUD_CHECK"
	RuleHighRiskProfile      ReviewRule = "HIGH_RISK_PROFILE"
)

// AllReviewRules returns the closed review-rule vocabulary in declaration order.
func AllReviewRules() []ReviewRule {
	return []ReviewRule{
		RuleIdentityVerification,
		RuleIncomeValidation,
		RuleFraudCheck,
		RuleHighRiskProfile,
	}
}

// IsValid checks if the review rule is one of the supported enum values.
func (r ReviewRule) IsValid() bool {
	switch r {
	case RuleIdentityVerification, RuleIncomeValidation, RuleFraudCheck, RuleHighRiskProfile:
		return true
	}
	return false
}

func (r ReviewRule) String() string { return string(r) }

// ParseReviewRule creates a ReviewRule from a string, validating it against
// the closed set.
func ParseReviewRule(s string) (ReviewRule, error) {
	r := ReviewRule(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput,
			"unknown review rule %q, valid rules: %v", s, AllReviewRules())
	}
	return r, nil
}

// AgentKind names one of the three verification roles. Ordering between
// kinds is significant: prerequisites are expressed as agent sequences.
type AgentKind string

const (
	AgentIdentity AgentKind = "identity"
	AgentIncome   AgentKind = "income"
	AgentFraud    AgentKind = "fraud"
)

// AllAgentKinds returns the closed agent vocabulary in declaration order.
func AllAgentKinds() []AgentKind {
	return []AgentKind{AgentIdentity, AgentIncome, AgentFraud}
}

// IsValid checks if the agent kind is one of the supported enum values.
func (k AgentKind) IsValid() bool {
	switch k {
	case AgentIdentity, AgentIncome, AgentFraud:
		return true
	}
	return false
}

func (k AgentKind) String() string { return string(k) }

// ParseAgentKind creates an AgentKind from a string, validating it.
func ParseAgentKind(s string) (AgentKind, error) {
	k := AgentKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput,
			"unknown agent kind %q, valid kinds: %v", s, AllAgentKinds())
	}
	return k, nil
}

// RiskLevel classifies rules and findings.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// IsValid checks if the risk level is one of the four supported levels.
func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

func (l RiskLevel) String() string { return string(l) }

// Priority orders risk levels for execution planning: lower runs first.
// Unknown levels sort last so a corrupt value can never jump the queue.
func (l RiskLevel) Priority() int {
	switch l {
	case RiskCritical:
		return 0
	case RiskHigh:
		return 1
	case RiskMedium:
		return 2
	case RiskLow:
		return 3
	default:
		return 4
	}
}

// FindingStatus is the outcome of a single agent check.
type FindingStatus string

const (
	FindingPass   FindingStatus = "PASS"
	FindingFail   FindingStatus = "FAIL"
	FindingReview FindingStatus = "REVIEW"
)

// IsValid checks if the finding status is one of the supported values.
func (s FindingStatus) IsValid() bool {
	return s == FindingPass || s == FindingFail || s == FindingReview
}

func (s FindingStatus) String() string { return string(s) }

// DecisionStatus is a terminal underwriting decision state.
type DecisionStatus string

const (
	DecisionApproved      DecisionStatus = "APPROVED"
	DecisionDenied        DecisionStatus = "DENIED"
	DecisionPendingReview DecisionStatus = "PENDING_REVIEW"
)

// IsValid checks if the decision status is one of the supported values.
func (s DecisionStatus) IsValid() bool {
	return s == DecisionApproved || s == DecisionDenied || s == DecisionPendingReview
}

func (s DecisionStatus) String() string { return string(s) }
