package rules

import (
	dErrors "uwgate/pkg/domain-errors"
)

// Agent tool identifiers the checks may invoke. Closed set: a check that
// names anything else came from a bad extraction and must be rejected.
const (
	ToolCheckIdentity        = "check_identity"
	ToolVerifyIncome         = "verify_income"
	ToolCheckOFAC            = "check_ofac"
	ToolCheckFraudIndicators = "check_fraud_indicators"
	ToolCreditBureauData     = "get_credit_bureau_data"
)

var knownTools = map[string]struct{}{
	ToolCheckIdentity:        {},
	ToolVerifyIncome:         {},
	ToolCheckOFAC:            {},
	ToolCheckFraudIndicators: {},
	ToolCreditBureauData:     {},
}

// Approval-condition tags that resolve to a defined evaluation strategy.
var knownApprovalConditions = map[string]struct{}{
	"all_checks_pass":          {},
	"all_required_checks_pass": {},
}

// Validate structurally validates a candidate rule. It is pure and total: it
// never touches the extractor or any store, so it is the single choke point
// where malformed extraction output is kept out of the runtime.
func Validate(candidate *StructuredRule) error {
	if candidate == nil {
		return dErrors.New(dErrors.CodeValidation, "rule is required")
	}

	if !candidate.RiskLevel.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation,
			"risk_level %q is not one of LOW, MEDIUM, HIGH, CRITICAL", candidate.RiskLevel)
	}

	seenAgents := make(map[AgentKind]struct{}, len(candidate.RequiredAgents))
	for _, agent := range candidate.RequiredAgents {
		if !agent.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation,
				"required_agents contains unknown agent kind %q", agent)
		}
		if _, dup := seenAgents[agent]; dup {
			return dErrors.Newf(dErrors.CodeValidation,
				"required_agents contains duplicate agent %q", agent)
		}
		seenAgents[agent] = struct{}{}
	}

	checkNames := make(map[string]struct{}, len(candidate.Checks))
	for _, check := range candidate.Checks {
		if check.Name == "" {
			return dErrors.New(dErrors.CodeValidation, "check name is required")
		}
		if _, dup := checkNames[check.Name]; dup {
			return dErrors.Newf(dErrors.CodeValidation,
				"duplicate check name %q", check.Name)
		}
		checkNames[check.Name] = struct{}{}

		if _, ok := knownTools[check.Tool]; !ok {
			return dErrors.Newf(dErrors.CodeValidation,
				"check %q references unknown tool %q", check.Name, check.Tool)
		}
	}

	dc := candidate.DecisionCriteria
	if _, ok := knownApprovalConditions[dc.ApprovalCondition]; !ok {
		return dErrors.Newf(dErrors.CodeValidation,
			"approval_condition %q does not resolve to a defined evaluation strategy", dc.ApprovalCondition)
	}
	if dc.MinConfidence < 0 || dc.MinConfidence > 1 {
		return dErrors.Newf(dErrors.CodeValidation,
			"min_confidence %v is outside [0, 1]", dc.MinConfidence)
	}
	if dc.DTIThreshold != nil && (*dc.DTIThreshold < 0 || *dc.DTIThreshold > 1) {
		return dErrors.Newf(dErrors.CodeValidation,
			"dti_threshold %v is outside [0, 1]", *dc.DTIThreshold)
	}
	for _, name := range dc.ZeroToleranceChecks {
		if _, ok := checkNames[name]; !ok {
			return dErrors.Newf(dErrors.CodeValidation,
				"zero_tolerance_checks names %q which is not a configured check", name)
		}
	}

	if candidate.WorkflowConfig.TimeoutSeconds <= 0 {
		return dErrors.Newf(dErrors.CodeValidation,
			"workflow timeout_seconds must be positive, got %d", candidate.WorkflowConfig.TimeoutSeconds)
	}

	return nil
}
