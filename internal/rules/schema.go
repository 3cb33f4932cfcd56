package rules

import (
	"encoding/json"
	"fmt"
)

// Threshold is a numeric-or-symbolic check threshold. Policy documents carry
// thresholds either as numbers (0.43) or symbols ("DTI < 43%"), so both wire
// forms round-trip.
type Threshold struct {
	Number *float64
	Symbol string
}

// MarshalJSON emits the numeric form when set, the symbolic form otherwise.
func (t Threshold) MarshalJSON() ([]byte, error) {
	if t.Number != nil {
		return json.Marshal(*t.Number)
	}
	return json.Marshal(t.Symbol)
}

// UnmarshalJSON accepts a JSON number or string.
func (t *Threshold) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		t.Number = &n
		t.Symbol = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Number = nil
		t.Symbol = s
		return nil
	}
	return fmt.Errorf("threshold must be a number or a string, got %s", data)
}

// NumericThreshold builds a numeric threshold.
func NumericThreshold(v float64) *Threshold {
	return &Threshold{Number: &v}
}

// SymbolicThreshold builds a symbolic threshold.
func SymbolicThreshold(s string) *Threshold {
	return &Threshold{Symbol: s}
}

// CheckConfig describes one verification step within a rule.
type CheckConfig struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Tool          string     `json:"tool"`
	Required      bool       `json:"required"`
	Threshold     *Threshold `json:"threshold"`
	ZeroTolerance bool       `json:"zero_tolerance"`
}

// DecisionCriteria captures how findings combine into a final decision for
// one rule.
type DecisionCriteria struct {
	ApprovalCondition     string   `json:"approval_condition"`
	MinConfidence         float64  `json:"min_confidence"`
	DTIThreshold          *float64 `json:"dti_threshold"`
	ZeroToleranceChecks   []string `json:"zero_tolerance_checks"`
	RequiresManualSignoff bool     `json:"requires_manual_signoff"`
}

// WorkflowConfig captures per-rule execution hints.
type WorkflowConfig struct {
	ParallelExecution bool `json:"parallel_execution"`
	TimeoutSeconds    int  `json:"timeout_seconds"`
	RetryOnFailure    bool `json:"retry_on_failure"`
	CascadeMode       bool `json:"cascade_mode"`
}

// StructuredRule is the compiled representation of one policy document.
type StructuredRule struct {
	Description      string           `json:"description"`
	RiskLevel        RiskLevel        `json:"risk_level"`
	RequiredAgents   []AgentKind      `json:"required_agents"`
	Checks           []CheckConfig    `json:"checks"`
	DecisionCriteria DecisionCriteria `json:"decision_criteria"`
	WorkflowConfig   WorkflowConfig   `json:"workflow_config"`
}

// CheckByName finds a check configuration by name.
func (r *StructuredRule) CheckByName(name string) (CheckConfig, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return CheckConfig{}, false
}

// IsZeroTolerance reports whether the named check is flagged zero-tolerance,
// either on the check itself or in the decision criteria.
func (r *StructuredRule) IsZeroTolerance(checkName string) bool {
	if c, ok := r.CheckByName(checkName); ok && c.ZeroTolerance {
		return true
	}
	for _, name := range r.DecisionCriteria.ZeroToleranceChecks {
		if name == checkName {
			return true
		}
	}
	return false
}
