// Package bureau provides the seeded reference datasets the simulated
// verification agents consult: known identities, employment records, the
// OFAC sanctions list, and fraud velocity patterns. Lookups are
// deterministic so agent behavior is reproducible in tests.
package bureau

// IdentityRecord is a credit-bureau identity file.
type IdentityRecord struct {
	Name                 string
	Address              string
	Verified             bool
	TheftFlags           bool
	AddressHistoryMonths int
	GovernmentVerified   bool
}

// IncomeRecord is an employment and income file.
type IncomeRecord struct {
	Employer              string
	EmploymentStatus      string
	AnnualIncome          float64
	EmploymentMonths      int
	Verified              bool
	DocumentationComplete bool
}

// Bureau answers identity, income, sanctions, and fraud-pattern lookups.
type Bureau struct {
	identities map[string]IdentityRecord
	incomes    map[string]IncomeRecord
	ofac       map[string]struct{}
	velocity   map[string]struct{}
}

// New returns a bureau seeded with the reference datasets.
func New() *Bureau {
	return &Bureau{
		identities: map[string]IdentityRecord{
			"111-22-3333": {
				Name:                 "John Doe",
				Address:              "123 Main St, New York, NY 10001",
				Verified:             true,
				AddressHistoryMonths: 36,
				GovernmentVerified:   true,
			},
			"222-33-4444": {
				Name:                 "Jane Smith",
				Address:              "456 Oak Ave, Los Angeles, CA 90001",
				Verified:             true,
				AddressHistoryMonths: 24,
				GovernmentVerified:   true,
			},
			"333-44-5555": {
				Name:                 "Bob Johnson",
				Address:              "789 Elm St, Chicago, IL 60601",
				Verified:             false,
				TheftFlags:           true,
				AddressHistoryMonths: 3,
				GovernmentVerified:   false,
			},
		},
		incomes: map[string]IncomeRecord{
			"111-22-3333": {
				Employer:              "Tech Corp Inc",
				EmploymentStatus:      "full_time",
				AnnualIncome:          85000,
				EmploymentMonths:      48,
				Verified:              true,
				DocumentationComplete: true,
			},
			"222-33-4444": {
				Employer:              "Healthcare Solutions LLC",
				EmploymentStatus:      "full_time",
				AnnualIncome:          120000,
				EmploymentMonths:      60,
				Verified:              true,
				DocumentationComplete: true,
			},
			"333-44-5555": {
				Employer:              "Unknown",
				EmploymentStatus:      "self_employed",
				AnnualIncome:          45000,
				EmploymentMonths:      2,
				Verified:              false,
				DocumentationComplete: false,
			},
		},
		ofac: map[string]struct{}{
			"444-55-6666": {},
			"555-66-7777": {},
		},
		velocity: map[string]struct{}{
			"333-44-5555": {},
			"666-77-8888": {},
		},
	}
}

// LookupIdentity returns the identity file for an SSN, if one exists.
func (b *Bureau) LookupIdentity(ssn string) (IdentityRecord, bool) {
	rec, ok := b.identities[ssn]
	return rec, ok
}

// LookupIncome returns the income file for an SSN, if one exists.
func (b *Bureau) LookupIncome(ssn string) (IncomeRecord, bool) {
	rec, ok := b.incomes[ssn]
	return rec, ok
}

// OnSanctionsList reports whether the SSN matches the OFAC list.
func (b *Bureau) OnSanctionsList(ssn string) bool {
	_, ok := b.ofac[ssn]
	return ok
}

// HighVelocity reports whether the SSN shows high application velocity.
func (b *Bureau) HighVelocity(ssn string) bool {
	_, ok := b.velocity[ssn]
	return ok
}
