package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uwgate/internal/rules"
	"uwgate/internal/rules/registry"
)

func TestPlan(t *testing.T) {
	t.Run("income plus fraud dedupes shared prerequisites", func(t *testing.T) {
		plan, err := Plan([]rules.ReviewRule{rules.RuleIncomeValidation, rules.RuleFraudCheck})
		require.NoError(t, err)

		// FRAUD_CHECK is CRITICAL so it sorts first; its prerequisites pull in
		// identity and income, and INCOME_VALIDATION adds nothing new.
		assert.Equal(t, []rules.AgentKind{rules.AgentIdentity, rules.AgentIncome, rules.AgentFraud},
			plan.ExecutionOrder)
		assert.Equal(t, 3, plan.TotalAgents)
		assert.Equal(t, []rules.ReviewRule{rules.RuleFraudCheck, rules.RuleIncomeValidation},
			plan.RulesByPriority)
		assert.True(t, plan.HasCriticalRules)
	})

	t.Run("identity plus fraud counts identity once", func(t *testing.T) {
		plan, err := Plan([]rules.ReviewRule{rules.RuleIdentityVerification, rules.RuleFraudCheck})
		require.NoError(t, err)

		assert.Equal(t, []rules.AgentKind{rules.AgentIdentity, rules.AgentIncome, rules.AgentFraud},
			plan.ExecutionOrder)
		assert.Equal(t, 3, plan.TotalAgents)
	})

	t.Run("single rule plans its own agents only", func(t *testing.T) {
		plan, err := Plan([]rules.ReviewRule{rules.RuleIncomeValidation})
		require.NoError(t, err)

		assert.Equal(t, []rules.AgentKind{rules.AgentIncome}, plan.ExecutionOrder)
		assert.Equal(t, 1, plan.TotalAgents)
		assert.False(t, plan.HasCriticalRules)
	})

	t.Run("all four rules never exceed the three agents", func(t *testing.T) {
		plan, err := Plan(rules.AllReviewRules())
		require.NoError(t, err)

		assert.Equal(t, 3, plan.TotalAgents)
		assert.Len(t, plan.RuleDetails, 4)
	})

	t.Run("priority sort is stable for equal levels", func(t *testing.T) {
		// IDENTITY_VERIFICATION and HIGH_RISK_PROFILE are both HIGH; input
		// order must be preserved between them.
		plan, err := Plan([]rules.ReviewRule{rules.RuleHighRiskProfile, rules.RuleIdentityVerification})
		require.NoError(t, err)
		assert.Equal(t, []rules.ReviewRule{rules.RuleHighRiskProfile, rules.RuleIdentityVerification},
			plan.RulesByPriority)

		plan, err = Plan([]rules.ReviewRule{rules.RuleIdentityVerification, rules.RuleHighRiskProfile})
		require.NoError(t, err)
		assert.Equal(t, []rules.ReviewRule{rules.RuleIdentityVerification, rules.RuleHighRiskProfile},
			plan.RulesByPriority)
	})

	t.Run("unknown rule fails the whole plan", func(t *testing.T) {
		_, err := Plan([]rules.ReviewRule{rules.RuleIncomeValidation, "MYSTERY_RULE"})
		assert.Error(t, err)
	})

	t.Run("empty input yields an empty plan", func(t *testing.T) {
		plan, err := Plan(nil)
		require.NoError(t, err)
		assert.Empty(t, plan.ExecutionOrder)
		assert.Zero(t, plan.TotalAgents)
	})
}

func TestValidateRegistry(t *testing.T) {
	identityRule := func() rules.StructuredRule {
		return rules.StructuredRule{
			Description:    "Verify applicant identity",
			RiskLevel:      rules.RiskHigh,
			RequiredAgents: []rules.AgentKind{rules.AgentIdentity},
			DecisionCriteria: rules.DecisionCriteria{
				ApprovalCondition: "all_checks_pass",
				MinConfidence:     0.8,
			},
			WorkflowConfig: rules.WorkflowConfig{TimeoutSeconds: 30},
		}
	}

	t.Run("matching registry has no warnings", func(t *testing.T) {
		reg, err := registry.New(map[rules.ReviewRule]rules.StructuredRule{
			rules.RuleIdentityVerification: identityRule(),
		})
		require.NoError(t, err)

		warnings := ValidateRegistry(reg)
		assert.Empty(t, warnings[rules.RuleIdentityVerification])
	})

	t.Run("agent mismatch yields a warning, not an error", func(t *testing.T) {
		rule := identityRule()
		rule.RequiredAgents = []rules.AgentKind{rules.AgentIncome}
		reg, err := registry.New(map[rules.ReviewRule]rules.StructuredRule{
			rules.RuleIdentityVerification: rule,
		})
		require.NoError(t, err)

		warnings := ValidateRegistry(reg)
		require.Len(t, warnings[rules.RuleIdentityVerification], 1)
		assert.Contains(t, warnings[rules.RuleIdentityVerification][0], "agent mismatch")
	})

	t.Run("risk level mismatch yields a warning", func(t *testing.T) {
		rule := identityRule()
		rule.RiskLevel = rules.RiskLow
		reg, err := registry.New(map[rules.ReviewRule]rules.StructuredRule{
			rules.RuleIdentityVerification: rule,
		})
		require.NoError(t, err)

		warnings := ValidateRegistry(reg)
		require.Len(t, warnings[rules.RuleIdentityVerification], 1)
		assert.Contains(t, warnings[rules.RuleIdentityVerification][0], "risk level mismatch")
	})
}
