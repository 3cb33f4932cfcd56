package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
	"uwgate/pkg/domain"
	dErrors "uwgate/pkg/domain-errors"
)

func decision(id domain.ApplicationID, status rules.DecisionStatus) *models.UnderwritingDecision {
	f, _ := models.NewFinding("IdentityAgent", "ssn_validation",
		rules.FindingPass, rules.RiskLow, 0.9, "ok")
	return &models.UnderwritingDecision{
		ApplicationID:   id,
		Decision:        status,
		ConfidenceScore: 0.9,
		Findings:        []models.AgentFinding{*f},
		RulesApplied:    []rules.ReviewRule{rules.RuleIdentityVerification},
		Timestamp:       time.Now(),
	}
}

func TestMemorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	t.Run("round trips a decision", func(t *testing.T) {
		d := decision("APP-1", rules.DecisionApproved)
		require.NoError(t, m.Save(ctx, d))

		got, err := m.GetByApplication(ctx, "APP-1")
		require.NoError(t, err)
		assert.Equal(t, d.Decision, got.Decision)
		assert.Len(t, got.Findings, 1)
	})

	t.Run("re-saving replaces the recorded decision", func(t *testing.T) {
		require.NoError(t, m.Save(ctx, decision("APP-1", rules.DecisionDenied)))

		got, err := m.GetByApplication(ctx, "APP-1")
		require.NoError(t, err)
		assert.Equal(t, rules.DecisionDenied, got.Decision)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("missing application is not_found", func(t *testing.T) {
		_, err := m.GetByApplication(ctx, "APP-404")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("rejects decisions without an application id", func(t *testing.T) {
		err := m.Save(ctx, &models.UnderwritingDecision{})
		assert.Error(t, err)
	})
}

func TestMemoryIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	d := decision("APP-2", rules.DecisionApproved)
	require.NoError(t, m.Save(ctx, d))

	// Mutating the caller's copy or a returned copy never leaks into the store.
	d.Findings[0].Status = rules.FindingFail
	got, err := m.GetByApplication(ctx, "APP-2")
	require.NoError(t, err)
	assert.Equal(t, rules.FindingPass, got.Findings[0].Status)

	got.Decision = rules.DecisionDenied
	again, err := m.GetByApplication(ctx, "APP-2")
	require.NoError(t, err)
	assert.Equal(t, rules.DecisionApproved, again.Decision)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = m.Save(ctx, decision("APP-3", rules.DecisionApproved))
				_, _ = m.GetByApplication(ctx, "APP-3")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.Len())
}
