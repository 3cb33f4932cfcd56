package agents

import (
	"context"

	"uwgate/internal/agents/bureau"
	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
)

// Check names produced by the fraud agent.
const (
	CheckOFACScreening  = "ofac_screening"
	CheckVelocity       = "velocity_check"
	CheckInquiryPattern = "inquiry_pattern_check"
)

// FraudAgent screens for sanctions matches and fraud indicators. It runs
// after identity and income because inquiry interpretation depends on their
// findings being available.
type FraudAgent struct {
	bureau *bureau.Bureau
}

// NewFraudAgent constructs a fraud agent backed by the given bureau.
func NewFraudAgent(b *bureau.Bureau) *FraudAgent {
	return &FraudAgent{bureau: b}
}

func (a *FraudAgent) Kind() rules.AgentKind { return rules.AgentFraud }
func (a *FraudAgent) Name() string          { return "FraudAgent" }

func (a *FraudAgent) Checks() []Check {
	return []Check{
		{Name: CheckOFACScreening, Run: a.checkOFAC},
		{Name: CheckVelocity, Run: a.checkVelocity},
		{Name: CheckInquiryPattern, Run: a.checkInquiryPattern},
	}
}

// checkOFAC screens against the sanctions list. A match is a zero-tolerance
// failure: the aggregator denies regardless of every other finding.
func (a *FraudAgent) checkOFAC(_ context.Context, app *models.CreditApplication) (*models.AgentFinding, error) {
	if a.bureau.OnSanctionsList(app.SSN) {
		return mustFinding(a.Name(), CheckOFACScreening, rules.FindingFail, rules.RiskCritical, 0,
			"Exact match on OFAC sanctions list (SDN)"), nil
	}
	return mustFinding(a.Name(), CheckOFACScreening, rules.FindingPass, rules.RiskLow, 1.0,
		"No match on OFAC sanctions lists (SDN, Non-SDN, Sectoral)"), nil
}

func (a *FraudAgent) checkVelocity(_ context.Context, app *models.CreditApplication) (*models.AgentFinding, error) {
	if a.bureau.HighVelocity(app.SSN) {
		return mustFinding(a.Name(), CheckVelocity, rules.FindingFail, rules.RiskHigh, 0.60,
			"High application velocity detected in the last 30 days"), nil
	}
	return mustFinding(a.Name(), CheckVelocity, rules.FindingPass, rules.RiskLow, 0.90,
		"Application velocity within normal bounds"), nil
}

func (a *FraudAgent) checkInquiryPattern(_ context.Context, app *models.CreditApplication) (*models.AgentFinding, error) {
	if a.bureau.HighVelocity(app.SSN) {
		return mustFinding(a.Name(), CheckInquiryPattern, rules.FindingReview, rules.RiskMedium, 0.65,
			"Recent credit inquiry pattern is consistent with velocity abuse"), nil
	}
	return mustFinding(a.Name(), CheckInquiryPattern, rules.FindingPass, rules.RiskLow, 0.92,
		"Credit inquiry pattern is unremarkable"), nil
}
