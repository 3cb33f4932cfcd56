// Package models holds the underwriting domain objects: the credit
// application under review, per-agent findings, and the final decision.
package models

import (
	"time"

	"uwgate/internal/rules"
	"uwgate/pkg/domain"
	dErrors "uwgate/pkg/domain-errors"
)

// CreditApplication is one credit card application. Immutable once submitted.
type CreditApplication struct {
	ApplicationID    domain.ApplicationID `json:"application_id"`
	CustomerName     string               `json:"customer_name"`
	SSN              string               `json:"ssn"`
	AnnualIncome     float64              `json:"annual_income"`
	CreditScore      int                  `json:"credit_score"`
	DTIRatio         *float64             `json:"dti_ratio,omitempty"`
	ReviewRules      []rules.ReviewRule   `json:"review_rules"`
	Address          string               `json:"address,omitempty"`
	EmploymentStatus string               `json:"employment_status,omitempty"`
	RequestedLimit   *float64             `json:"requested_credit_limit,omitempty"`
	ExistingDebt     *float64             `json:"existing_debt,omitempty"`
	SubmittedAt      time.Time            `json:"submitted_at"`
}

// Validate enforces the application's domain invariants.
func (a *CreditApplication) Validate() error {
	if a.ApplicationID.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "application_id is required")
	}
	if a.CustomerName == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "customer_name is required")
	}
	if a.SSN == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "ssn is required")
	}
	if a.AnnualIncome <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "annual_income must be positive")
	}
	if a.CreditScore < 300 || a.CreditScore > 850 {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"credit_score %d is outside 300-850", a.CreditScore)
	}
	if a.DTIRatio != nil && (*a.DTIRatio < 0 || *a.DTIRatio > 1) {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"dti_ratio %v is outside [0, 1]", *a.DTIRatio)
	}
	if len(a.ReviewRules) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "at least one review rule is required")
	}
	for _, r := range a.ReviewRules {
		if !r.IsValid() {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"unknown review rule %q", r)
		}
	}
	return nil
}

// AgentFinding is the outcome of one agent check. Produced exactly once per
// (agent, check) execution and never mutated afterwards.
type AgentFinding struct {
	AgentName  string              `json:"agent_name"`
	CheckType  string              `json:"check_type"`
	Status     rules.FindingStatus `json:"status"`
	Details    map[string]any      `json:"details,omitempty"`
	RiskLevel  rules.RiskLevel     `json:"risk_level"`
	Confidence float64             `json:"confidence"`
	Reasoning  string              `json:"reasoning"`
	Timestamp  time.Time           `json:"timestamp"`
}

// NewFinding creates an AgentFinding with domain invariant validation.
func NewFinding(agentName, checkType string, status rules.FindingStatus, riskLevel rules.RiskLevel, confidence float64, reasoning string) (*AgentFinding, error) {
	if agentName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "agent_name is required")
	}
	if checkType == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "check_type is required")
	}
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "invalid finding status %q", status)
	}
	if !riskLevel.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "invalid risk level %q", riskLevel)
	}
	if confidence < 0 || confidence > 1 {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation,
			"confidence %v is outside [0, 1]", confidence)
	}

	return &AgentFinding{
		AgentName:  agentName,
		CheckType:  checkType,
		Status:     status,
		RiskLevel:  riskLevel,
		Confidence: confidence,
		Reasoning:  reasoning,
		Timestamp:  time.Now(),
	}, nil
}

// UnderwritingDecision is the terminal outcome for one application.
type UnderwritingDecision struct {
	ApplicationID        domain.ApplicationID `json:"application_id"`
	Decision             rules.DecisionStatus `json:"decision"`
	ConfidenceScore      float64              `json:"confidence_score"`
	Findings             []AgentFinding       `json:"findings"`
	Reasoning            string               `json:"reasoning"`
	Timestamp            time.Time            `json:"timestamp"`
	ProcessingSeconds    float64              `json:"processing_time_seconds,omitempty"`
	RulesApplied         []rules.ReviewRule   `json:"rules_applied"`
	RequiresManualReview bool                 `json:"requires_manual_review"`
}

// FindingsByStatus returns all findings with a specific status.
func (d *UnderwritingDecision) FindingsByStatus(status rules.FindingStatus) []AgentFinding {
	var out []AgentFinding
	for _, f := range d.Findings {
		if f.Status == status {
			out = append(out, f)
		}
	}
	return out
}

// HasCriticalFailures reports whether any finding failed at CRITICAL risk.
func (d *UnderwritingDecision) HasCriticalFailures() bool {
	for _, f := range d.Findings {
		if f.Status == rules.FindingFail && f.RiskLevel == rules.RiskCritical {
			return true
		}
	}
	return false
}

// AllChecksPassed reports whether every finding passed.
func (d *UnderwritingDecision) AllChecksPassed() bool {
	for _, f := range d.Findings {
		if f.Status != rules.FindingPass {
			return false
		}
	}
	return true
}
