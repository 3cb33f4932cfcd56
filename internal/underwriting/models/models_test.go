package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uwgate/internal/rules"
	dErrors "uwgate/pkg/domain-errors"
)

func validApplication() CreditApplication {
	return CreditApplication{
		ApplicationID: "APP-12345",
		CustomerName:  "John Doe",
		SSN:           "111-22-3333",
		AnnualIncome:  85000,
		CreditScore:   720,
		ReviewRules:   []rules.ReviewRule{rules.RuleIdentityVerification},
		SubmittedAt:   time.Now(),
	}
}

func TestCreditApplicationValidate(t *testing.T) {
	t.Run("accepts a complete application", func(t *testing.T) {
		app := validApplication()
		assert.NoError(t, app.Validate())
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		mutations := map[string]func(*CreditApplication){
			"application_id": func(a *CreditApplication) { a.ApplicationID = "" },
			"customer_name":  func(a *CreditApplication) { a.CustomerName = "" },
			"ssn":            func(a *CreditApplication) { a.SSN = "" },
			"review_rules":   func(a *CreditApplication) { a.ReviewRules = nil },
		}
		for name, mutate := range mutations {
			t.Run(name, func(t *testing.T) {
				app := validApplication()
				mutate(&app)
				assert.Error(t, app.Validate())
			})
		}
	})

	t.Run("rejects non-positive income", func(t *testing.T) {
		app := validApplication()
		app.AnnualIncome = 0
		assert.Error(t, app.Validate())
	})

	t.Run("rejects credit score outside 300-850", func(t *testing.T) {
		for _, score := range []int{299, 851} {
			app := validApplication()
			app.CreditScore = score
			assert.Error(t, app.Validate(), "score %d", score)
		}
	})

	t.Run("rejects dti outside unit interval", func(t *testing.T) {
		bad := 1.2
		app := validApplication()
		app.DTIRatio = &bad
		assert.Error(t, app.Validate())
	})

	t.Run("rejects unknown review rules", func(t *testing.T) {
		app := validApplication()
		app.ReviewRules = append(app.ReviewRules, "MYSTERY_RULE")
		err := app.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestNewFinding(t *testing.T) {
	t.Run("builds a timestamped finding", func(t *testing.T) {
		f, err := NewFinding("IdentityAgent", "ssn_validation",
			rules.FindingPass, rules.RiskLow, 0.95, "ok")
		require.NoError(t, err)
		assert.False(t, f.Timestamp.IsZero())
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		cases := []struct {
			name       string
			agent      string
			check      string
			status     rules.FindingStatus
			risk       rules.RiskLevel
			confidence float64
		}{
			{"empty agent", "", "c", rules.FindingPass, rules.RiskLow, 0.5},
			{"empty check", "a", "", rules.FindingPass, rules.RiskLow, 0.5},
			{"bad status", "a", "c", "MAYBE", rules.RiskLow, 0.5},
			{"bad risk", "a", "c", rules.FindingPass, "SEVERE", 0.5},
			{"confidence below zero", "a", "c", rules.FindingPass, rules.RiskLow, -0.1},
			{"confidence above one", "a", "c", rules.FindingPass, rules.RiskLow, 1.1},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewFinding(tc.agent, tc.check, tc.status, tc.risk, tc.confidence, "r")
				assert.Error(t, err)
			})
		}
	})
}

func TestDecisionHelpers(t *testing.T) {
	pass, err := NewFinding("a", "c1", rules.FindingPass, rules.RiskLow, 0.9, "r")
	require.NoError(t, err)
	fail, err := NewFinding("a", "c2", rules.FindingFail, rules.RiskCritical, 0.2, "r")
	require.NoError(t, err)

	d := UnderwritingDecision{Findings: []AgentFinding{*pass, *fail}}
	assert.Len(t, d.FindingsByStatus(rules.FindingPass), 1)
	assert.True(t, d.HasCriticalFailures())
	assert.False(t, d.AllChecksPassed())

	clean := UnderwritingDecision{Findings: []AgentFinding{*pass}}
	assert.False(t, clean.HasCriticalFailures())
	assert.True(t, clean.AllChecksPassed())
}
