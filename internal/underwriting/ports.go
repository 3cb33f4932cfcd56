package underwriting

import (
	"context"

	"uwgate/internal/audit"
	"uwgate/internal/planner"
	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
	"uwgate/pkg/domain"
)

// DecisionStore persists terminal decisions for later retrieval and audit.
type DecisionStore interface {
	Save(ctx context.Context, d *models.UnderwritingDecision) error
	GetByApplication(ctx context.Context, id domain.ApplicationID) (*models.UnderwritingDecision, error)
}

// DecisionCache fronts the store for hot decision lookups. Get returns
// (nil, nil) on a miss.
type DecisionCache interface {
	Get(ctx context.Context, id domain.ApplicationID) (*models.UnderwritingDecision, error)
	Set(ctx context.Context, d *models.UnderwritingDecision) error
}

// AgentRunner executes an agent plan and returns the complete finding set.
// Implementations never fail: execution problems surface as findings.
type AgentRunner interface {
	Run(ctx context.Context, plan *planner.ExecutionPlan, applied map[rules.ReviewRule]rules.StructuredRule, app *models.CreditApplication) []models.AgentFinding
}

// AuditPublisher records decision lifecycle events, best-effort.
type AuditPublisher interface {
	Emit(ctx context.Context, e audit.Event)
}
