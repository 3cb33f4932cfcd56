package agents

import (
	"context"
	"fmt"
	"math"

	"uwgate/internal/agents/bureau"
	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
)

// Check names produced by the income agent.
const (
	CheckEmploymentVerification = "employment_verification"
	CheckIncomeDocumentation    = "income_documentation"
	CheckDTICalculation         = "dti_calculation"
)

const (
	// Stated income must be within 15% of the verified figure.
	incomeVarianceLimit = 0.15
	// Minimum employment tenure considered stable.
	minEmploymentMonths = 3
	// Standard debt-to-income ceiling.
	dtiLimit = 0.43
)

// IncomeAgent verifies stated income, employment stability, and
// debt-to-income ratio against bureau records.
type IncomeAgent struct {
	bureau *bureau.Bureau
}

// NewIncomeAgent constructs an income agent backed by the given bureau.
func NewIncomeAgent(b *bureau.Bureau) *IncomeAgent {
	return &IncomeAgent{bureau: b}
}

func (a *IncomeAgent) Kind() rules.AgentKind { return rules.AgentIncome }
func (a *IncomeAgent) Name() string          { return "IncomeAgent" }

func (a *IncomeAgent) Checks() []Check {
	return []Check{
		{Name: CheckEmploymentVerification, Run: a.checkEmployment},
		{Name: CheckIncomeDocumentation, Run: a.checkDocumentation},
		{Name: CheckDTICalculation, Run: a.checkDTI},
	}
}

func (a *IncomeAgent) checkEmployment(_ context.Context, app *models.CreditApplication) (*models.AgentFinding, error) {
	rec, found := a.bureau.LookupIncome(app.SSN)
	if !found {
		return mustFinding(a.Name(), CheckEmploymentVerification, rules.FindingFail, rules.RiskMedium, 0,
			"Unable to verify employment: no income file for SSN"), nil
	}

	employed := rec.EmploymentStatus == "full_time" || rec.EmploymentStatus == "part_time"
	stable := rec.EmploymentMonths >= minEmploymentMonths
	switch {
	case !employed:
		return mustFinding(a.Name(), CheckEmploymentVerification, rules.FindingReview, rules.RiskMedium, 0.50,
			fmt.Sprintf("Employment status %q requires additional documentation", rec.EmploymentStatus)), nil
	case !stable:
		return mustFinding(a.Name(), CheckEmploymentVerification, rules.FindingReview, rules.RiskMedium, 0.55,
			fmt.Sprintf("Employment tenure of %d months is below the %d month minimum",
				rec.EmploymentMonths, minEmploymentMonths)), nil
	default:
		return mustFinding(a.Name(), CheckEmploymentVerification, rules.FindingPass, rules.RiskLow, 0.90,
			fmt.Sprintf("Employment verified with %s (%d months)", rec.Employer, rec.EmploymentMonths)), nil
	}
}

func (a *IncomeAgent) checkDocumentation(_ context.Context, app *models.CreditApplication) (*models.AgentFinding, error) {
	rec, found := a.bureau.LookupIncome(app.SSN)
	if !found {
		return mustFinding(a.Name(), CheckIncomeDocumentation, rules.FindingFail, rules.RiskMedium, 0,
			"No income documentation available for SSN"), nil
	}
	if !rec.DocumentationComplete || !rec.Verified {
		return mustFinding(a.Name(), CheckIncomeDocumentation, rules.FindingFail, rules.RiskMedium, 0.50,
			"Income documentation is incomplete or unverified"), nil
	}

	variance := math.Abs(app.AnnualIncome-rec.AnnualIncome) / rec.AnnualIncome
	if variance >= incomeVarianceLimit {
		return mustFinding(a.Name(), CheckIncomeDocumentation, rules.FindingReview, rules.RiskMedium, 0.60,
			fmt.Sprintf("Stated income deviates %.0f%% from verified income", variance*100)), nil
	}
	return mustFinding(a.Name(), CheckIncomeDocumentation, rules.FindingPass, rules.RiskLow, 0.85,
		fmt.Sprintf("Stated income within %.0f%% of verified income", variance*100)), nil
}

func (a *IncomeAgent) checkDTI(_ context.Context, app *models.CreditApplication) (*models.AgentFinding, error) {
	dti := app.DTIRatio
	if dti == nil && app.ExistingDebt != nil && app.AnnualIncome > 0 {
		// Approximate monthly obligations as existing debt amortized over a year.
		monthly := *app.ExistingDebt / 12
		ratio := monthly / (app.AnnualIncome / 12)
		dti = &ratio
	}
	if dti == nil {
		return mustFinding(a.Name(), CheckDTICalculation, rules.FindingPass, rules.RiskLow, 0.80,
			"No debt obligations reported; DTI check not applicable"), nil
	}
	if *dti >= dtiLimit {
		return mustFinding(a.Name(), CheckDTICalculation, rules.FindingFail, rules.RiskMedium, 0.70,
			fmt.Sprintf("DTI ratio %.2f exceeds the %.2f limit", *dti, dtiLimit)), nil
	}
	return mustFinding(a.Name(), CheckDTICalculation, rules.FindingPass, rules.RiskLow, 0.90,
		fmt.Sprintf("DTI ratio %.2f is within the %.2f limit", *dti, dtiLimit)), nil
}
