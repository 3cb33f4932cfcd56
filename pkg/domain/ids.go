// Package domain holds shared identifier types used across modules.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "uwgate/pkg/domain-errors"
)

// ApplicationID identifies a credit application. Applications arrive with
// external identifiers (e.g. "APP-12345"), so this is a validated string
// rather than a UUID.
type ApplicationID string

// ParseApplicationID validates an external application identifier.
func ParseApplicationID(s string) (ApplicationID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "application_id is required")
	}
	if len(s) > 64 {
		return "", dErrors.New(dErrors.CodeValidation, "application_id must be at most 64 characters")
	}
	return ApplicationID(s), nil
}

func (id ApplicationID) String() string { return string(id) }

// IsZero reports whether the identifier is unset.
func (id ApplicationID) IsZero() bool { return id == "" }

// DecisionID identifies a stored underwriting decision.
type DecisionID uuid.UUID

// NewDecisionID generates a fresh decision identifier.
func NewDecisionID() DecisionID { return DecisionID(uuid.New()) }

// ParseDecisionID parses a decision identifier from its string form.
func ParseDecisionID(s string) (DecisionID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DecisionID{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid decision id")
	}
	return DecisionID(u), nil
}

func (id DecisionID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the identifier is the zero UUID.
func (id DecisionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
