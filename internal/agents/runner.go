package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"uwgate/internal/planner"
	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
)

// Runner executes an agent plan against an application. Agents run strictly
// in plan order so prerequisite findings exist before dependent agents
// start; within one agent, the owning rule's workflow config decides whether
// checks run in parallel.
//
// Runner never returns an error: collaborator failures and timeouts are
// converted into FAIL/REVIEW findings so the aggregator always sees a
// terminating finding set.
type Runner struct {
	agents         map[rules.AgentKind]Agent
	logger         *slog.Logger
	defaultTimeout time.Duration
}

// NewRunner constructs a runner over the given agents.
func NewRunner(logger *slog.Logger, defaultTimeout time.Duration, agents ...Agent) *Runner {
	byKind := make(map[rules.AgentKind]Agent, len(agents))
	for _, a := range agents {
		byKind[a.Kind()] = a
	}
	return &Runner{
		agents:         byKind,
		logger:         logger,
		defaultTimeout: defaultTimeout,
	}
}

// Run executes every agent in the plan's execution order and returns the
// full finding set.
func (r *Runner) Run(ctx context.Context, plan *planner.ExecutionPlan, applied map[rules.ReviewRule]rules.StructuredRule, app *models.CreditApplication) []models.AgentFinding {
	var findings []models.AgentFinding

	for _, kind := range plan.ExecutionOrder {
		owner, workflow := r.owningWorkflow(plan, applied, kind)
		findings = append(findings, r.runAgent(ctx, kind, owner, workflow, app)...)
	}
	return findings
}

// owningWorkflow resolves the workflow config governing an agent: the
// highest-priority rule in the plan whose agent set includes it.
func (r *Runner) owningWorkflow(plan *planner.ExecutionPlan, applied map[rules.ReviewRule]rules.StructuredRule, kind rules.AgentKind) (rules.ReviewRule, rules.WorkflowConfig) {
	for _, detail := range plan.RuleDetails {
		for _, a := range detail.Agents {
			if a != kind {
				continue
			}
			if rule, ok := applied[detail.Rule]; ok {
				return detail.Rule, rule.WorkflowConfig
			}
			return detail.Rule, rules.WorkflowConfig{
				TimeoutSeconds: int(r.defaultTimeout.Seconds()),
			}
		}
	}
	return "", rules.WorkflowConfig{TimeoutSeconds: int(r.defaultTimeout.Seconds())}
}

func (r *Runner) runAgent(ctx context.Context, kind rules.AgentKind, owner rules.ReviewRule, workflow rules.WorkflowConfig, app *models.CreditApplication) []models.AgentFinding {
	agent, ok := r.agents[kind]
	if !ok {
		return []models.AgentFinding{*mustFinding(string(kind), "agent_dispatch",
			rules.FindingFail, rules.RiskHigh, 0,
			fmt.Sprintf("no %s agent is registered", kind))}
	}

	timeout := r.defaultTimeout
	if workflow.TimeoutSeconds > 0 {
		timeout = time.Duration(workflow.TimeoutSeconds) * time.Second
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	checks := agent.Checks()
	var findings []models.AgentFinding

	if workflow.ParallelExecution {
		results := make([]*models.AgentFinding, len(checks))
		g, gctx := errgroup.WithContext(actx)
		for i, check := range checks {
			g.Go(func() error {
				results[i] = r.runCheck(gctx, agent, check, workflow, app)
				return nil
			})
		}
		// Check conversion never errors; Wait only synchronizes.
		_ = g.Wait()
		for _, f := range results {
			findings = append(findings, *f)
		}
	} else {
		for _, check := range checks {
			f := r.runCheck(actx, agent, check, workflow, app)
			findings = append(findings, *f)
			if workflow.CascadeMode && f.Status == rules.FindingFail {
				r.logger.InfoContext(ctx, "cascade mode stopped agent after failing check",
					"agent", agent.Name(),
					"rule", owner,
					"check", check.Name,
				)
				break
			}
		}
	}

	return findings
}

// runCheck executes one check, retrying once when the owning rule allows it,
// and converts errors into findings so the pipeline always terminates in a
// decision.
func (r *Runner) runCheck(ctx context.Context, agent Agent, check Check, workflow rules.WorkflowConfig, app *models.CreditApplication) *models.AgentFinding {
	if err := ctx.Err(); err != nil {
		return r.timeoutFinding(agent, check)
	}

	f, err := check.Run(ctx, app)
	if err != nil && workflow.RetryOnFailure && ctx.Err() == nil {
		r.logger.WarnContext(ctx, "check failed, retrying once",
			"agent", agent.Name(),
			"check", check.Name,
			"error", err,
		)
		f, err = check.Run(ctx, app)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return r.timeoutFinding(agent, check)
		}
		r.logger.ErrorContext(ctx, "check execution failed",
			"agent", agent.Name(),
			"check", check.Name,
			"error", err,
		)
		return mustFinding(agent.Name(), check.Name, rules.FindingFail, rules.RiskHigh, 0,
			fmt.Sprintf("agent execution failed: %v", err))
	}
	return f
}

// timeoutFinding marks a timed-out check for review rather than dropping it.
func (r *Runner) timeoutFinding(agent Agent, check Check) *models.AgentFinding {
	return mustFinding(agent.Name(), check.Name, rules.FindingReview, rules.RiskMedium, 0,
		"check timed out before completion")
}
