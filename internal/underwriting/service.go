package underwriting

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"uwgate/internal/audit"
	"uwgate/internal/planner"
	"uwgate/internal/rules"
	"uwgate/internal/rules/registry"
	"uwgate/internal/underwriting/metrics"
	"uwgate/internal/underwriting/models"
	"uwgate/pkg/domain"
	dErrors "uwgate/pkg/domain-errors"
)

// Service orchestrates the evaluate pipeline: plan the agents for the
// application's review rules, run them, aggregate findings into a terminal
// decision, then persist, cache, and audit it.
type Service struct {
	logger   *slog.Logger
	snapshot *registry.Snapshot
	runner   AgentRunner
	store    DecisionStore
	cache    DecisionCache
	audit    AuditPublisher
	tracer   trace.Tracer
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithStore persists decisions to the given store.
func WithStore(store DecisionStore) Option {
	return func(s *Service) { s.store = store }
}

// WithCache fronts decision lookups with the given cache.
func WithCache(cache DecisionCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithAuditPublisher emits decision lifecycle events.
func WithAuditPublisher(pub AuditPublisher) Option {
	return func(s *Service) { s.audit = pub }
}

// NewService wires the underwriting pipeline. Store, cache, and audit are
// optional: the pipeline still produces decisions without them.
func NewService(logger *slog.Logger, snapshot *registry.Snapshot, runner AgentRunner, opts ...Option) *Service {
	s := &Service{
		logger:   logger,
		snapshot: snapshot,
		runner:   runner,
		tracer:   otel.Tracer("uwgate/underwriting"),
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.SetRegistryRules(snapshot.Current().Len())
	return s
}

// Process evaluates one application end to end and returns its terminal
// decision. Persistence and audit failures are logged, never fatal: once the
// findings are aggregated the decision stands.
func (s *Service) Process(ctx context.Context, app *models.CreditApplication) (*models.UnderwritingDecision, error) {
	ctx, span := s.tracer.Start(ctx, "underwriting.process",
		trace.WithAttributes(attribute.String("application_id", app.ApplicationID.String())))
	defer span.End()

	started := time.Now()

	if err := app.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid application")
	}

	plan, err := planner.Plan(app.ReviewRules)
	if err != nil {
		return nil, err
	}

	applied := s.appliedRules(ctx, app.ReviewRules)
	findings := s.runner.Run(ctx, plan, applied, app)
	decision := Evaluate(app, findings, applied)

	span.SetAttributes(
		attribute.String("decision", string(decision.Decision)),
		attribute.Int("findings", len(decision.Findings)),
	)
	metrics.ObserveDecision(string(decision.Decision), time.Since(started))
	for _, f := range decision.Findings {
		metrics.ObserveFinding(f.AgentName, string(f.Status))
	}

	s.record(ctx, decision)

	s.logger.InfoContext(ctx, "application evaluated",
		"application_id", app.ApplicationID,
		"decision", decision.Decision,
		"confidence", decision.ConfidenceScore,
		"findings", len(decision.Findings),
		"rules_applied", decision.RulesApplied,
	)
	return decision, nil
}

// PlanPreview computes the execution plan for a rule set without running it.
func (s *Service) PlanPreview(_ context.Context, active []rules.ReviewRule) (*planner.ExecutionPlan, error) {
	if len(active) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one review rule is required")
	}
	return planner.Plan(active)
}

// Decision returns the recorded decision for an application, consulting the
// cache before the store.
func (s *Service) Decision(ctx context.Context, id domain.ApplicationID) (*models.UnderwritingDecision, error) {
	if s.cache != nil {
		d, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "decision cache read failed",
				"application_id", id, "error", err)
		} else if d != nil {
			return d, nil
		}
	}
	if s.store != nil {
		d, err := s.store.GetByApplication(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if cerr := s.cache.Set(ctx, d); cerr != nil {
				s.logger.WarnContext(ctx, "decision cache backfill failed",
					"application_id", id, "error", cerr)
			}
		}
		return d, nil
	}
	return nil, dErrors.Newf(dErrors.CodeNotFound, "no decision recorded for application %q", id)
}

// ListRules returns the review rules compiled into the active registry.
func (s *Service) ListRules() []rules.ReviewRule {
	return s.snapshot.Current().List()
}

// Rule returns the compiled structured rule for a review rule.
func (s *Service) Rule(name rules.ReviewRule) (rules.StructuredRule, error) {
	return s.snapshot.Current().Get(name)
}

// SwapRegistry atomically replaces the active rule set. In-flight
// evaluations keep the snapshot they started with.
func (s *Service) SwapRegistry(ctx context.Context, reg *registry.Registry) {
	s.snapshot.Swap(reg)
	metrics.SetRegistryRules(reg.Len())
	if s.audit != nil {
		ev := audit.NewEvent(audit.KindRegistrySwapped)
		ev.Detail = "active rule registry replaced"
		s.audit.Emit(ctx, ev)
	}
	s.logger.InfoContext(ctx, "rule registry swapped", "rules", reg.Len())
}

// appliedRules resolves the compiled rule for every active review rule.
// Rules without a compiled entry still route agents but contribute no
// decision criteria; the gap is logged so operators can recompile.
func (s *Service) appliedRules(ctx context.Context, active []rules.ReviewRule) map[rules.ReviewRule]rules.StructuredRule {
	reg := s.snapshot.Current()
	applied := make(map[rules.ReviewRule]rules.StructuredRule, len(active))
	for _, name := range active {
		if _, done := applied[name]; done {
			continue
		}
		rule, err := reg.Get(name)
		if err != nil {
			s.logger.WarnContext(ctx, "no compiled rule, routing without criteria",
				"rule", name, "error", err)
			continue
		}
		applied[name] = rule
	}
	return applied
}

// record persists, caches, and audits a terminal decision, best-effort.
func (s *Service) record(ctx context.Context, d *models.UnderwritingDecision) {
	if s.store != nil {
		if err := s.store.Save(ctx, d); err != nil {
			s.logger.ErrorContext(ctx, "decision persist failed",
				"application_id", d.ApplicationID, "error", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, d); err != nil {
			s.logger.WarnContext(ctx, "decision cache write failed",
				"application_id", d.ApplicationID, "error", err)
		}
	}
	if s.audit != nil {
		ev := audit.NewEvent(audit.KindDecisionFinalized)
		ev.ApplicationID = d.ApplicationID.String()
		ev.Decision = string(d.Decision)
		ev.Confidence = d.ConfidenceScore
		for _, r := range d.RulesApplied {
			ev.RulesApplied = append(ev.RulesApplied, string(r))
		}
		s.audit.Emit(ctx, ev)
	}
}
