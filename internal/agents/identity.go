package agents

import (
	"context"
	"fmt"
	"strings"

	"uwgate/internal/agents/bureau"
	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
)

// Check names produced by the identity agent.
const (
	CheckSSNValidation       = "ssn_validation"
	CheckIdentityTheft       = "identity_theft_check"
	CheckAddressVerification = "address_verification"
)

// minAddressHistoryMonths is the shortest address history accepted as stable.
const minAddressHistoryMonths = 6

// IdentityAgent verifies the applicant's identity against bureau records.
type IdentityAgent struct {
	bureau *bureau.Bureau
}

// NewIdentityAgent constructs an identity agent backed by the given bureau.
func NewIdentityAgent(b *bureau.Bureau) *IdentityAgent {
	return &IdentityAgent{bureau: b}
}

func (a *IdentityAgent) Kind() rules.AgentKind { return rules.AgentIdentity }
func (a *IdentityAgent) Name() string          { return "IdentityAgent" }

func (a *IdentityAgent) Checks() []Check {
	return []Check{
		{Name: CheckSSNValidation, Run: a.checkSSN},
		{Name: CheckIdentityTheft, Run: a.checkTheftFlags},
		{Name: CheckAddressVerification, Run: a.checkAddress},
	}
}

func (a *IdentityAgent) checkSSN(_ context.Context, app *models.CreditApplication) (*models.AgentFinding, error) {
	rec, found := a.bureau.LookupIdentity(app.SSN)
	if !found {
		return mustFinding(a.Name(), CheckSSNValidation, rules.FindingFail, rules.RiskHigh, 0,
			"SSN not found in credit bureau records"), nil
	}
	if !rec.Verified {
		return mustFinding(a.Name(), CheckSSNValidation, rules.FindingFail, rules.RiskHigh, 0.40,
			"SSN failed credit bureau verification"), nil
	}

	nameMatch := strings.EqualFold(rec.Name, app.CustomerName)
	if !nameMatch {
		return mustFinding(a.Name(), CheckSSNValidation, rules.FindingReview, rules.RiskMedium, 0.60,
			fmt.Sprintf("SSN is valid but the stated name %q does not match bureau records", app.CustomerName)), nil
	}
	return mustFinding(a.Name(), CheckSSNValidation, rules.FindingPass, rules.RiskLow, 0.95,
		"SSN validated against credit bureau with matching name"), nil
}

func (a *IdentityAgent) checkTheftFlags(_ context.Context, app *models.CreditApplication) (*models.AgentFinding, error) {
	rec, found := a.bureau.LookupIdentity(app.SSN)
	if !found {
		return mustFinding(a.Name(), CheckIdentityTheft, rules.FindingReview, rules.RiskMedium, 0.50,
			"No bureau file to screen for identity theft flags"), nil
	}
	if rec.TheftFlags {
		return mustFinding(a.Name(), CheckIdentityTheft, rules.FindingFail, rules.RiskHigh, 0.40,
			"Identity theft flags present on the bureau file"), nil
	}
	return mustFinding(a.Name(), CheckIdentityTheft, rules.FindingPass, rules.RiskLow, 0.95,
		"No identity theft flags on file"), nil
}

func (a *IdentityAgent) checkAddress(_ context.Context, app *models.CreditApplication) (*models.AgentFinding, error) {
	rec, found := a.bureau.LookupIdentity(app.SSN)
	if !found {
		return mustFinding(a.Name(), CheckAddressVerification, rules.FindingFail, rules.RiskMedium, 0,
			"No address history available"), nil
	}
	if rec.AddressHistoryMonths < minAddressHistoryMonths {
		return mustFinding(a.Name(), CheckAddressVerification, rules.FindingReview, rules.RiskMedium, 0.55,
			fmt.Sprintf("Address history of %d months is below the %d month minimum",
				rec.AddressHistoryMonths, minAddressHistoryMonths)), nil
	}

	confidence := 0.90
	if app.Address != "" && !strings.Contains(strings.ToLower(app.Address), strings.ToLower(rec.Address)) &&
		!strings.Contains(strings.ToLower(rec.Address), strings.ToLower(app.Address)) {
		confidence = 0.75
	}
	return mustFinding(a.Name(), CheckAddressVerification, rules.FindingPass, rules.RiskLow, confidence,
		fmt.Sprintf("Address history of %d months verified", rec.AddressHistoryMonths)), nil
}
