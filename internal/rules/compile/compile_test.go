package compile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uwgate/internal/rules"
)

type stubSource struct {
	texts map[rules.ReviewRule]string
	order []rules.ReviewRule
}

func (s *stubSource) List() []rules.ReviewRule { return s.order }

func (s *stubSource) PolicyText(rule rules.ReviewRule) (string, error) {
	return s.texts[rule], nil
}

type stubExtractor struct {
	rules map[rules.ReviewRule]rules.StructuredRule
	err   error
}

func (e *stubExtractor) Extract(_ context.Context, rule rules.ReviewRule, _ string) (rules.StructuredRule, error) {
	if e.err != nil {
		return rules.StructuredRule{}, e.err
	}
	return e.rules[rule], nil
}

func compiledRule() rules.StructuredRule {
	return rules.StructuredRule{
		Description:    "Verify applicant identity",
		RiskLevel:      rules.RiskHigh,
		RequiredAgents: []rules.AgentKind{rules.AgentIdentity},
		Checks: []rules.CheckConfig{{
			Name:        "ssn_validation",
			Description: "Verify SSN",
			Tool:        rules.ToolCheckIdentity,
			Required:    true,
		}},
		DecisionCriteria: rules.DecisionCriteria{
			ApprovalCondition: "all_checks_pass",
			MinConfidence:     0.8,
		},
		WorkflowConfig: rules.WorkflowConfig{TimeoutSeconds: 30},
	}
}

func TestCompile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := &stubSource{
		texts: map[rules.ReviewRule]string{rules.RuleIdentityVerification: "policy text"},
		order: []rules.ReviewRule{rules.RuleIdentityVerification},
	}

	t.Run("compiles every policy into a registry", func(t *testing.T) {
		extractor := &stubExtractor{rules: map[rules.ReviewRule]rules.StructuredRule{
			rules.RuleIdentityVerification: compiledRule(),
		}}

		reg, err := New(source, extractor, logger).Compile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("extraction failure fails the whole compile", func(t *testing.T) {
		extractor := &stubExtractor{err: errors.New("model unavailable")}
		_, err := New(source, extractor, logger).Compile(context.Background())
		assert.Error(t, err)
	})

	t.Run("invalid extracted rule fails the compile", func(t *testing.T) {
		bad := compiledRule()
		bad.WorkflowConfig.TimeoutSeconds = 0
		extractor := &stubExtractor{rules: map[rules.ReviewRule]rules.StructuredRule{
			rules.RuleIdentityVerification: bad,
		}}
		_, err := New(source, extractor, logger).Compile(context.Background())
		assert.Error(t, err)
	})
}

const extractedJSON = `{
  "rule_name": "IDENTITY_VERIFICATION",
  "description": "Verify applicant identity",
  "risk_level": "HIGH",
  "required_agents": ["identity"],
  "checks": [{
    "name": "ssn_validation",
    "description": "Verify SSN",
    "tool": "check_identity",
    "required": true,
    "threshold": null,
    "zero_tolerance": false
  }],
  "decision_criteria": {
    "approval_condition": "all_checks_pass",
    "min_confidence": 0.8,
    "dti_threshold": null,
    "zero_tolerance_checks": [],
    "requires_manual_signoff": false
  },
  "workflow_config": {
    "parallel_execution": false,
    "timeout_seconds": 30,
    "retry_on_failure": true,
    "cascade_mode": false
  }
}`

func TestParseExtraction(t *testing.T) {
	t.Run("parses plain JSON", func(t *testing.T) {
		rule, err := parseExtraction(rules.RuleIdentityVerification, extractedJSON)
		require.NoError(t, err)
		assert.Equal(t, rules.RiskHigh, rule.RiskLevel)
		assert.Len(t, rule.Checks, 1)
	})

	t.Run("strips markdown fences", func(t *testing.T) {
		fenced := "```json\n" + extractedJSON + "\n```"
		rule, err := parseExtraction(rules.RuleIdentityVerification, fenced)
		require.NoError(t, err)
		assert.Equal(t, []rules.AgentKind{rules.AgentIdentity}, rule.RequiredAgents)
	})

	t.Run("picks the matching rule out of an array", func(t *testing.T) {
		arr := "[" + extractedJSON + "]"
		rule, err := parseExtraction(rules.RuleIdentityVerification, arr)
		require.NoError(t, err)
		assert.Equal(t, "Verify applicant identity", rule.Description)
	})

	t.Run("rejects a mismatched rule name", func(t *testing.T) {
		_, err := parseExtraction(rules.RuleFraudCheck, extractedJSON)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "IDENTITY_VERIFICATION")
	})

	t.Run("rejects non-JSON output", func(t *testing.T) {
		_, err := parseExtraction(rules.RuleIdentityVerification, "I cannot extract that policy.")
		assert.Error(t, err)
	})
}
