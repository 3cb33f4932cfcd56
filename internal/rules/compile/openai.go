package compile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"uwgate/internal/rules"
	dErrors "uwgate/pkg/domain-errors"
)

const extractionPrompt = `You are an expert at analyzing underwriting policy documents and extracting structured information.

Given the following policy document, extract and structure the information into JSON format.

Policy Document:
%s

Extract the following information:
1. Review rule name (from REVIEW_RULE: line)
2. Description
3. Risk level (LOW, MEDIUM, HIGH, or CRITICAL)
4. Required agents (identity, income, fraud, or combination)
5. Individual checks required
6. Decision criteria
7. Workflow configuration

For each check, identify:
- Check name (snake_case)
- Description
- Tool/API to use (check_identity, verify_income, check_fraud_indicators, check_ofac, get_credit_bureau_data)
- Whether it's required
- Any thresholds (e.g., DTI < 43%%)
- Zero tolerance flags

Respond with ONLY valid JSON in this exact format:
{
  "rule_name": "IDENTITY_VERIFICATION",
  "description": "Policy description",
  "risk_level": "HIGH",
  "required_agents": ["identity"],
  "checks": [
    {
      "name": "ssn_validation",
      "description": "Verify SSN",
      "tool": "check_identity",
      "required": true,
      "threshold": null,
      "zero_tolerance": false
    }
  ],
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
}

JSON:`

// extractedRule is the model's wire format: a structured rule plus the rule
// name it claims to describe.
type extractedRule struct {
	RuleName string `json:"rule_name"`
	rules.StructuredRule
}

// OpenAIExtractor extracts structured rules from policy text with a chat
// completion model.
type OpenAIExtractor struct {
	client openai.Client
	model  string
}

// NewOpenAIExtractor constructs an extractor for the given model.
func NewOpenAIExtractor(apiKey, model string) (*OpenAIExtractor, error) {
	if apiKey == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "openai API key is required")
	}
	if model == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "openai model is required")
	}
	return &OpenAIExtractor{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Extract asks the model for the structured form of one policy document.
func (e *OpenAIExtractor) Extract(ctx context.Context, rule rules.ReviewRule, policyText string) (rules.StructuredRule, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(fmt.Sprintf(extractionPrompt, policyText)),
		},
		MaxCompletionTokens: openai.Int(2048),
	})
	if err != nil {
		return rules.StructuredRule{}, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return rules.StructuredRule{}, fmt.Errorf("openai returned no choices")
	}

	return parseExtraction(rule, resp.Choices[0].Message.Content)
}

// parseExtraction decodes the model output, tolerating markdown fences and
// array-wrapped responses, and verifies the rule name matches.
func parseExtraction(rule rules.ReviewRule, content string) (rules.StructuredRule, error) {
	content = stripFences(content)

	var extracted extractedRule
	if err := json.Unmarshal([]byte(content), &extracted); err != nil {
		var many []extractedRule
		if aerr := json.Unmarshal([]byte(content), &many); aerr != nil || len(many) == 0 {
			return rules.StructuredRule{}, fmt.Errorf("model output is not valid rule JSON: %w", err)
		}
		extracted = many[0]
		for _, item := range many {
			if strings.EqualFold(item.RuleName, string(rule)) {
				extracted = item
				break
			}
		}
	}

	if extracted.RuleName != "" && !strings.EqualFold(extracted.RuleName, string(rule)) {
		return rules.StructuredRule{}, fmt.Errorf(
			"model extracted rule %q while compiling %s", extracted.RuleName, rule)
	}
	return extracted.StructuredRule, nil
}

// stripFences removes markdown code fences the model sometimes wraps JSON in.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
