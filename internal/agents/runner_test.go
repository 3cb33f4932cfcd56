package agents

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uwgate/internal/planner"
	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
)

type stubAgent struct {
	kind   rules.AgentKind
	checks []Check
}

func (a *stubAgent) Kind() rules.AgentKind { return a.kind }
func (a *stubAgent) Name() string          { return string(a.kind) + "-stub" }
func (a *stubAgent) Checks() []Check       { return a.checks }

func passCheck(name string, record func(string)) Check {
	return Check{
		Name: name,
		Run: func(_ context.Context, _ *models.CreditApplication) (*models.AgentFinding, error) {
			if record != nil {
				record(name)
			}
			return models.NewFinding("stub", name, rules.FindingPass, rules.RiskLow, 0.9, "ok")
		},
	}
}

func failCheck(name string) Check {
	return Check{
		Name: name,
		Run: func(_ context.Context, _ *models.CreditApplication) (*models.AgentFinding, error) {
			return models.NewFinding("stub", name, rules.FindingFail, rules.RiskMedium, 0.3, "bad")
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func appliedWith(rule rules.ReviewRule, workflow rules.WorkflowConfig) map[rules.ReviewRule]rules.StructuredRule {
	return map[rules.ReviewRule]rules.StructuredRule{
		rule: {
			Description:    "test",
			RiskLevel:      rules.RiskHigh,
			RequiredAgents: []rules.AgentKind{rules.AgentIdentity},
			DecisionCriteria: rules.DecisionCriteria{
				ApprovalCondition: "all_checks_pass",
				MinConfidence:     0.8,
			},
			WorkflowConfig: workflow,
		},
	}
}

func TestRunnerExecutesPlanOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, name)
	}

	runner := NewRunner(testLogger(), time.Second,
		&stubAgent{kind: rules.AgentIdentity, checks: []Check{passCheck("identity_check", record)}},
		&stubAgent{kind: rules.AgentIncome, checks: []Check{passCheck("income_check", record)}},
		&stubAgent{kind: rules.AgentFraud, checks: []Check{passCheck("fraud_check", record)}},
	)

	plan, err := planner.Plan([]rules.ReviewRule{rules.RuleFraudCheck})
	require.NoError(t, err)

	applied := appliedWith(rules.RuleFraudCheck, rules.WorkflowConfig{TimeoutSeconds: 5})
	findings := runner.Run(context.Background(), plan, applied, testApp("111-22-3333", "John Doe"))

	require.Len(t, findings, 3)
	assert.Equal(t, []string{"identity_check", "income_check", "fraud_check"}, order,
		"prerequisites must run before the fraud agent")
}

func TestRunnerMissingAgent(t *testing.T) {
	runner := NewRunner(testLogger(), time.Second) // no agents registered

	plan, err := planner.Plan([]rules.ReviewRule{rules.RuleIncomeValidation})
	require.NoError(t, err)

	findings := runner.Run(context.Background(), plan,
		appliedWith(rules.RuleIncomeValidation, rules.WorkflowConfig{TimeoutSeconds: 5}),
		testApp("111-22-3333", "John Doe"))

	require.Len(t, findings, 1)
	assert.Equal(t, rules.FindingFail, findings[0].Status)
	assert.Equal(t, "agent_dispatch", findings[0].CheckType)
}

func TestRunnerCascadeMode(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, name)
	}

	runner := NewRunner(testLogger(), time.Second,
		&stubAgent{kind: rules.AgentIdentity, checks: []Check{
			failCheck("first"),
			passCheck("second", record),
		}},
	)

	plan, err := planner.Plan([]rules.ReviewRule{rules.RuleIdentityVerification})
	require.NoError(t, err)

	findings := runner.Run(context.Background(), plan,
		appliedWith(rules.RuleIdentityVerification, rules.WorkflowConfig{TimeoutSeconds: 5, CascadeMode: true}),
		testApp("111-22-3333", "John Doe"))

	require.Len(t, findings, 1, "cascade must stop after the failing check")
	assert.Empty(t, order)
}

func TestRunnerRetryOnFailure(t *testing.T) {
	var attempts int
	flaky := Check{
		Name: "flaky",
		Run: func(_ context.Context, _ *models.CreditApplication) (*models.AgentFinding, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("transient upstream error")
			}
			return models.NewFinding("stub", "flaky", rules.FindingPass, rules.RiskLow, 0.9, "ok")
		},
	}
	runner := NewRunner(testLogger(), time.Second,
		&stubAgent{kind: rules.AgentIdentity, checks: []Check{flaky}},
	)

	plan, err := planner.Plan([]rules.ReviewRule{rules.RuleIdentityVerification})
	require.NoError(t, err)

	findings := runner.Run(context.Background(), plan,
		appliedWith(rules.RuleIdentityVerification, rules.WorkflowConfig{TimeoutSeconds: 5, RetryOnFailure: true}),
		testApp("111-22-3333", "John Doe"))

	require.Len(t, findings, 1)
	assert.Equal(t, rules.FindingPass, findings[0].Status)
	assert.Equal(t, 2, attempts)
}

func TestRunnerConvertsErrorsToFailFindings(t *testing.T) {
	broken := Check{
		Name: "broken",
		Run: func(_ context.Context, _ *models.CreditApplication) (*models.AgentFinding, error) {
			return nil, errors.New("upstream exploded")
		},
	}
	runner := NewRunner(testLogger(), time.Second,
		&stubAgent{kind: rules.AgentIdentity, checks: []Check{broken}},
	)

	plan, err := planner.Plan([]rules.ReviewRule{rules.RuleIdentityVerification})
	require.NoError(t, err)

	findings := runner.Run(context.Background(), plan,
		appliedWith(rules.RuleIdentityVerification, rules.WorkflowConfig{TimeoutSeconds: 5}),
		testApp("111-22-3333", "John Doe"))

	require.Len(t, findings, 1)
	assert.Equal(t, rules.FindingFail, findings[0].Status)
	assert.Contains(t, findings[0].Reasoning, "upstream exploded")
}

func TestRunnerTimeoutProducesReviewFinding(t *testing.T) {
	slow := Check{
		Name: "slow",
		Run: func(ctx context.Context, _ *models.CreditApplication) (*models.AgentFinding, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(500 * time.Millisecond):
				return models.NewFinding("stub", "slow", rules.FindingPass, rules.RiskLow, 0.9, "ok")
			}
		},
	}
	runner := NewRunner(testLogger(), 20*time.Millisecond,
		&stubAgent{kind: rules.AgentIdentity, checks: []Check{slow}},
	)

	plan, err := planner.Plan([]rules.ReviewRule{rules.RuleIdentityVerification})
	require.NoError(t, err)

	// TimeoutSeconds unset: the runner's short default applies.
	findings := runner.Run(context.Background(), plan,
		appliedWith(rules.RuleIdentityVerification, rules.WorkflowConfig{}),
		testApp("111-22-3333", "John Doe"))

	require.Len(t, findings, 1)
	assert.Equal(t, rules.FindingReview, findings[0].Status)
	assert.Contains(t, findings[0].Reasoning, "timed out")
}

func TestRunnerParallelExecution(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]bool)
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		seen[name] = true
	}

	runner := NewRunner(testLogger(), time.Second,
		&stubAgent{kind: rules.AgentIdentity, checks: []Check{
			passCheck("a", record),
			passCheck("b", record),
			passCheck("c", record),
		}},
	)

	plan, err := planner.Plan([]rules.ReviewRule{rules.RuleIdentityVerification})
	require.NoError(t, err)

	findings := runner.Run(context.Background(), plan,
		appliedWith(rules.RuleIdentityVerification, rules.WorkflowConfig{TimeoutSeconds: 5, ParallelExecution: true}),
		testApp("111-22-3333", "John Doe"))

	require.Len(t, findings, 3)
	assert.Len(t, seen, 3)
	// Findings keep check declaration order even when execution interleaves.
	assert.Equal(t, "a", findings[0].CheckType)
	assert.Equal(t, "b", findings[1].CheckType)
	assert.Equal(t, "c", findings[2].CheckType)
}
