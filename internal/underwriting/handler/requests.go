package handler

import (
	"strings"
	"time"

	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
	id "uwgate/pkg/domain"
	dErrors "uwgate/pkg/domain-errors"
)

// EvaluateRequest is the HTTP request body for POST /underwriting/evaluate.
type EvaluateRequest struct {
	ApplicationID    string   `json:"application_id"`
	CustomerName     string   `json:"customer_name"`
	SSN              string   `json:"ssn"`
	AnnualIncome     float64  `json:"annual_income"`
	CreditScore      int      `json:"credit_score"`
	DTIRatio         *float64 `json:"dti_ratio,omitempty"`
	ReviewRules      []string `json:"review_rules"`
	Address          string   `json:"address,omitempty"`
	EmploymentStatus string   `json:"employment_status,omitempty"`
	RequestedLimit   *float64 `json:"requested_credit_limit,omitempty"`
	ExistingDebt     *float64 `json:"existing_debt,omitempty"`

	// Parsed values (populated by Validate)
	parsedID    id.ApplicationID
	parsedRules []rules.ReviewRule
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	appID, err := id.ParseApplicationID(r.ApplicationID)
	if err != nil {
		return err
	}
	r.parsedID = appID

	r.CustomerName = strings.TrimSpace(r.CustomerName)
	if r.CustomerName == "" {
		return dErrors.New(dErrors.CodeValidation, "customer_name is required")
	}
	r.SSN = strings.TrimSpace(r.SSN)
	if r.SSN == "" {
		return dErrors.New(dErrors.CodeValidation, "ssn is required")
	}
	if r.AnnualIncome <= 0 {
		return dErrors.New(dErrors.CodeValidation, "annual_income must be positive")
	}
	if r.CreditScore < 300 || r.CreditScore > 850 {
		return dErrors.New(dErrors.CodeValidation, "credit_score must be between 300 and 850")
	}
	if r.DTIRatio != nil && (*r.DTIRatio < 0 || *r.DTIRatio > 1) {
		return dErrors.New(dErrors.CodeValidation, "dti_ratio must be between 0 and 1")
	}

	if len(r.ReviewRules) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one review rule is required")
	}
	parsed, err := parseRuleList(r.ReviewRules)
	if err != nil {
		return err
	}
	r.parsedRules = parsed

	return nil
}

// ToApplication converts the validated request into the domain application.
func (r *EvaluateRequest) ToApplication() *models.CreditApplication {
	return &models.CreditApplication{
		ApplicationID:    r.parsedID,
		CustomerName:     r.CustomerName,
		SSN:              r.SSN,
		AnnualIncome:     r.AnnualIncome,
		CreditScore:      r.CreditScore,
		DTIRatio:         r.DTIRatio,
		ReviewRules:      r.parsedRules,
		Address:          r.Address,
		EmploymentStatus: r.EmploymentStatus,
		RequestedLimit:   r.RequestedLimit,
		ExistingDebt:     r.ExistingDebt,
		SubmittedAt:      time.Now(),
	}
}

// parseRuleList validates a list of review rule names.
func parseRuleList(names []string) ([]rules.ReviewRule, error) {
	out := make([]rules.ReviewRule, 0, len(names))
	for _, name := range names {
		rule, err := rules.ParseReviewRule(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}
