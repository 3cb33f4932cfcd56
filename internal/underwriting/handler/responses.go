package handler

import (
	"time"

	"uwgate/internal/planner"
	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
)

// DecisionResponse is the HTTP response for evaluate and decision lookups.
type DecisionResponse struct {
	ApplicationID        string            `json:"application_id"`
	Decision             string            `json:"decision"`
	ConfidenceScore      float64           `json:"confidence_score"`
	Reasoning            string            `json:"reasoning"`
	RequiresManualReview bool              `json:"requires_manual_review"`
	RulesApplied         []string          `json:"rules_applied"`
	Findings             []FindingResponse `json:"findings"`
	ProcessingSeconds    float64           `json:"processing_time_seconds"`
	Timestamp            time.Time         `json:"timestamp"`
}

// FindingResponse is one agent finding in a decision response.
type FindingResponse struct {
	AgentName  string    `json:"agent_name"`
	CheckType  string    `json:"check_type"`
	Status     string    `json:"status"`
	RiskLevel  string    `json:"risk_level"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
	Timestamp  time.Time `json:"timestamp"`
}

// FromDecision converts a domain decision to an HTTP response.
func FromDecision(d *models.UnderwritingDecision) *DecisionResponse {
	resp := &DecisionResponse{
		ApplicationID:        d.ApplicationID.String(),
		Decision:             string(d.Decision),
		ConfidenceScore:      d.ConfidenceScore,
		Reasoning:            d.Reasoning,
		RequiresManualReview: d.RequiresManualReview,
		RulesApplied:         make([]string, 0, len(d.RulesApplied)),
		Findings:             make([]FindingResponse, 0, len(d.Findings)),
		ProcessingSeconds:    d.ProcessingSeconds,
		Timestamp:            d.Timestamp,
	}
	for _, r := range d.RulesApplied {
		resp.RulesApplied = append(resp.RulesApplied, string(r))
	}
	for _, f := range d.Findings {
		resp.Findings = append(resp.Findings, FindingResponse{
			AgentName:  f.AgentName,
			CheckType:  f.CheckType,
			Status:     string(f.Status),
			RiskLevel:  string(f.RiskLevel),
			Confidence: f.Confidence,
			Reasoning:  f.Reasoning,
			Timestamp:  f.Timestamp,
		})
	}
	return resp
}

// PlanResponse is the HTTP response for GET /underwriting/plan.
type PlanResponse struct {
	ExecutionOrder   []string             `json:"execution_order"`
	TotalAgents      int                  `json:"total_agents"`
	RulesByPriority  []string             `json:"rules_by_priority"`
	RuleDetails      []RuleDetailResponse `json:"rule_details"`
	HasCriticalRules bool                 `json:"has_critical_rules"`
}

// RuleDetailResponse is one rule's contribution to a plan.
type RuleDetailResponse struct {
	Rule       string   `json:"rule"`
	RiskLevel  string   `json:"risk_level"`
	Agents     []string `json:"agents"`
	IsCritical bool     `json:"is_critical"`
}

// FromPlan converts an execution plan to an HTTP response.
func FromPlan(p *planner.ExecutionPlan) *PlanResponse {
	resp := &PlanResponse{
		ExecutionOrder:   make([]string, 0, len(p.ExecutionOrder)),
		TotalAgents:      p.TotalAgents,
		RulesByPriority:  make([]string, 0, len(p.RulesByPriority)),
		RuleDetails:      make([]RuleDetailResponse, 0, len(p.RuleDetails)),
		HasCriticalRules: p.HasCriticalRules,
	}
	for _, a := range p.ExecutionOrder {
		resp.ExecutionOrder = append(resp.ExecutionOrder, string(a))
	}
	for _, r := range p.RulesByPriority {
		resp.RulesByPriority = append(resp.RulesByPriority, string(r))
	}
	for _, d := range p.RuleDetails {
		agents := make([]string, 0, len(d.Agents))
		for _, a := range d.Agents {
			agents = append(agents, string(a))
		}
		resp.RuleDetails = append(resp.RuleDetails, RuleDetailResponse{
			Rule:       string(d.Rule),
			RiskLevel:  string(d.RiskLevel),
			Agents:     agents,
			IsCritical: d.IsCritical,
		})
	}
	return resp
}

// RuleListResponse is the HTTP response for GET /rules.
type RuleListResponse struct {
	Rules []string `json:"rules"`
}

// FromRuleList converts registry rule names to an HTTP response.
func FromRuleList(names []rules.ReviewRule) *RuleListResponse {
	resp := &RuleListResponse{Rules: make([]string, 0, len(names))}
	for _, n := range names {
		resp.Rules = append(resp.Rules, string(n))
	}
	return resp
}
