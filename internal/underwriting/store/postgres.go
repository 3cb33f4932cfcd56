package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
	"uwgate/pkg/domain"
	dErrors "uwgate/pkg/domain-errors"
)

// Postgres stores the latest decision per application durably. Findings and
// applied rules are kept as JSONB so the full decision survives replay.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a decision store to the given DSN and ensures the
// schema exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "postgres connect failed")
	}
	s := &Postgres{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS uw_decisions (
	application_id         TEXT PRIMARY KEY,
	decision               TEXT NOT NULL,
	confidence_score       DOUBLE PRECISION NOT NULL,
	reasoning              TEXT NOT NULL,
	requires_manual_review BOOLEAN NOT NULL,
	processing_seconds     DOUBLE PRECISION NOT NULL,
	rules_applied          JSONB NOT NULL,
	findings               JSONB NOT NULL,
	decided_at             TIMESTAMPTZ NOT NULL
)`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "decision schema migration failed")
	}
	return nil
}

// Save upserts the decision: re-evaluating an application replaces its
// recorded outcome.
func (s *Postgres) Save(ctx context.Context, d *models.UnderwritingDecision) error {
	rulesJSON, err := json.Marshal(d.RulesApplied)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode rules_applied")
	}
	findingsJSON, err := json.Marshal(d.Findings)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode findings")
	}

	const q = `
INSERT INTO uw_decisions (
	application_id, decision, confidence_score, reasoning,
	requires_manual_review, processing_seconds, rules_applied, findings, decided_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (application_id) DO UPDATE SET
	decision               = EXCLUDED.decision,
	confidence_score       = EXCLUDED.confidence_score,
	reasoning              = EXCLUDED.reasoning,
	requires_manual_review = EXCLUDED.requires_manual_review,
	processing_seconds     = EXCLUDED.processing_seconds,
	rules_applied          = EXCLUDED.rules_applied,
	findings               = EXCLUDED.findings,
	decided_at             = EXCLUDED.decided_at`
	_, err = s.pool.Exec(ctx, q,
		d.ApplicationID.String(), string(d.Decision), d.ConfidenceScore, d.Reasoning,
		d.RequiresManualReview, d.ProcessingSeconds, rulesJSON, findingsJSON, d.Timestamp,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist decision")
	}
	return nil
}

// GetByApplication loads the recorded decision for an application.
func (s *Postgres) GetByApplication(ctx context.Context, id domain.ApplicationID) (*models.UnderwritingDecision, error) {
	const q = `
SELECT decision, confidence_score, reasoning, requires_manual_review,
       processing_seconds, rules_applied, findings, decided_at
FROM uw_decisions WHERE application_id = $1`

	var (
		d            models.UnderwritingDecision
		decision     string
		rulesJSON    []byte
		findingsJSON []byte
	)
	row := s.pool.QueryRow(ctx, q, id.String())
	err := row.Scan(&decision, &d.ConfidenceScore, &d.Reasoning, &d.RequiresManualReview,
		&d.ProcessingSeconds, &rulesJSON, &findingsJSON, &d.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no decision recorded for application %q", id)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load decision")
	}

	d.ApplicationID = id
	d.Decision = rules.DecisionStatus(decision)
	if err := json.Unmarshal(rulesJSON, &d.RulesApplied); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode rules_applied")
	}
	if err := json.Unmarshal(findingsJSON, &d.Findings); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode findings")
	}
	return &d, nil
}

// Close releases the connection pool.
func (s *Postgres) Close() { s.pool.Close() }
