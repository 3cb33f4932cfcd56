// Package agents implements the simulated verification agents (identity,
// income, fraud) and the runner that executes an agent plan against an
// application.
package agents

import (
	"context"

	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
)

// Check is one verification step an agent performs. Each execution produces
// exactly one finding.
type Check struct {
	Name string
	Run  func(ctx context.Context, app *models.CreditApplication) (*models.AgentFinding, error)
}

// Agent is one of the three verification roles. Agents are stateless: every
// check reads the application and external datasets only.
type Agent interface {
	Kind() rules.AgentKind
	Name() string
	Checks() []Check
}

// mustFinding wraps models.NewFinding for agent implementations whose inputs
// are statically valid. Construction can only fail on an invariant bug, and
// that must surface immediately.
func mustFinding(agentName, checkType string, status rules.FindingStatus, riskLevel rules.RiskLevel, confidence float64, reasoning string) *models.AgentFinding {
	f, err := models.NewFinding(agentName, checkType, status, riskLevel, confidence, reasoning)
	if err != nil {
		panic(err)
	}
	return f
}
