// Package underwriting turns agent findings into terminal underwriting
// decisions and orchestrates the evaluate pipeline end to end.
package underwriting

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
	"uwgate/pkg/domain"
	dErrors "uwgate/pkg/domain-errors"
)

// Evaluation collects findings for one application and finalizes them into a
// decision exactly once. States: collecting -> finalized (terminal).
type Evaluation struct {
	mu sync.Mutex

	applicationID domain.ApplicationID
	rulesApplied  []rules.ReviewRule
	criteria      []rules.DecisionCriteria
	zeroTolerance map[string]struct{}

	findings  []models.AgentFinding
	startedAt time.Time
	decision  *models.UnderwritingDecision
}

// NewEvaluation starts collecting findings for an application under the
// decision criteria of every applied rule.
func NewEvaluation(applicationID domain.ApplicationID, applied map[rules.ReviewRule]rules.StructuredRule) *Evaluation {
	e := &Evaluation{
		applicationID: applicationID,
		zeroTolerance: make(map[string]struct{}),
		startedAt:     time.Now(),
	}

	names := make([]rules.ReviewRule, 0, len(applied))
	for name := range applied {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	for _, name := range names {
		rule := applied[name]
		e.rulesApplied = append(e.rulesApplied, name)
		e.criteria = append(e.criteria, rule.DecisionCriteria)
		for _, check := range rule.DecisionCriteria.ZeroToleranceChecks {
			e.zeroTolerance[check] = struct{}{}
		}
		for _, check := range rule.Checks {
			if check.ZeroTolerance {
				e.zeroTolerance[check.Name] = struct{}{}
			}
		}
	}
	return e
}

// AddFinding appends a finding. Valid only while collecting.
func (e *Evaluation) AddFinding(f models.AgentFinding) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.decision != nil {
		return dErrors.New(dErrors.CodeConflict, "evaluation already finalized")
	}
	e.findings = append(e.findings, f)
	return nil
}

// Finalize computes the terminal decision. Idempotent: repeated calls return
// the same decision without reprocessing.
func (e *Evaluation) Finalize() *models.UnderwritingDecision {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.decision != nil {
		return e.decision
	}

	decision := &models.UnderwritingDecision{
		ApplicationID:     e.applicationID,
		Findings:          append([]models.AgentFinding(nil), e.findings...),
		RulesApplied:      append([]rules.ReviewRule(nil), e.rulesApplied...),
		Timestamp:         time.Now(),
		ProcessingSeconds: time.Since(e.startedAt).Seconds(),
	}
	decision.ConfidenceScore = e.aggregateConfidence()

	e.resolve(decision)
	e.decision = decision
	return decision
}

// aggregateConfidence is the minimum confidence across findings: a single
// low-confidence finding must not be diluted by averaging.
func (e *Evaluation) aggregateConfidence() float64 {
	if len(e.findings) == 0 {
		return 0
	}
	min := e.findings[0].Confidence
	for _, f := range e.findings[1:] {
		if f.Confidence < min {
			min = f.Confidence
		}
	}
	return min
}

// minRequiredConfidence is the lowest min_confidence across applied rules.
func (e *Evaluation) minRequiredConfidence() float64 {
	if len(e.criteria) == 0 {
		return 0
	}
	min := e.criteria[0].MinConfidence
	for _, c := range e.criteria[1:] {
		if c.MinConfidence < min {
			min = c.MinConfidence
		}
	}
	return min
}

// requiresManualSignoff reports whether any applied rule demands a human in
// the loop regardless of outcome.
func (e *Evaluation) requiresManualSignoff() bool {
	for _, c := range e.criteria {
		if c.RequiresManualSignoff {
			return true
		}
	}
	return false
}

// resolve maps the collected findings onto exactly one of the three decision
// states. Total: every combination of findings and criteria terminates here.
func (e *Evaluation) resolve(d *models.UnderwritingDecision) {
	// Zero-tolerance failures deny unconditionally, regardless of every
	// other finding's confidence.
	if failed := e.zeroToleranceFailures(); len(failed) > 0 {
		d.Decision = rules.DecisionDenied
		d.RequiresManualReview = false
		d.Reasoning = fmt.Sprintf(
			"Denied: zero-tolerance check(s) failed: %s.", strings.Join(failed, ", "))
		return
	}

	for _, f := range e.findings {
		if f.Status == rules.FindingFail && f.RiskLevel == rules.RiskCritical {
			d.Decision = rules.DecisionDenied
			d.RequiresManualReview = false
			d.Reasoning = fmt.Sprintf(
				"Denied: critical failure in %s (%s).", f.CheckType, f.AgentName)
			return
		}
	}

	if len(e.findings) == 0 {
		d.Decision = rules.DecisionPendingReview
		d.RequiresManualReview = true
		d.Reasoning = "Pending review: no agent findings were produced for this application."
		return
	}

	required := e.minRequiredConfidence()
	if d.ConfidenceScore < required {
		d.Decision = rules.DecisionPendingReview
		d.RequiresManualReview = true
		d.Reasoning = fmt.Sprintf(
			"Pending review: aggregate confidence %.2f is below the required minimum %.2f.",
			d.ConfidenceScore, required)
		return
	}

	if e.requiresManualSignoff() {
		d.Decision = rules.DecisionPendingReview
		d.RequiresManualReview = true
		d.Reasoning = "Pending review: an applied rule requires manual sign-off."
		return
	}

	if d.AllChecksPassed() {
		d.Decision = rules.DecisionApproved
		d.RequiresManualReview = false
		d.Reasoning = fmt.Sprintf(
			"Approved: all %d checks passed with aggregate confidence %.2f.",
			len(e.findings), d.ConfidenceScore)
		return
	}

	d.Decision = rules.DecisionPendingReview
	d.RequiresManualReview = true
	d.Reasoning = "Pending review: one or more checks did not pass cleanly."
}

// zeroToleranceFailures returns the check types of failed findings whose
// check is flagged zero-tolerance by any applied rule.
func (e *Evaluation) zeroToleranceFailures() []string {
	var failed []string
	for _, f := range e.findings {
		if f.Status != rules.FindingFail {
			continue
		}
		if _, ok := e.zeroTolerance[f.CheckType]; ok {
			failed = append(failed, f.CheckType)
		}
	}
	return failed
}

// Evaluate aggregates a complete finding set into a decision in one shot.
// This is the consumer-facing form for callers that ran the agents
// themselves.
func Evaluate(app *models.CreditApplication, findings []models.AgentFinding, applied map[rules.ReviewRule]rules.StructuredRule) *models.UnderwritingDecision {
	eval := NewEvaluation(app.ApplicationID, applied)
	for _, f := range findings {
		// Cannot fail: the evaluation is not finalized until below.
		_ = eval.AddFinding(f)
	}
	return eval.Finalize()
}
