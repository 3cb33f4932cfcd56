// Package metrics exposes Prometheus instrumentation for the underwriting
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "uwgate",
		Subsystem: "underwriting",
		Name:      "decisions_total",
		Help:      "Terminal underwriting decisions by outcome.",
	}, []string{"decision"})

	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "uwgate",
		Subsystem: "underwriting",
		Name:      "evaluation_duration_seconds",
		Help:      "End-to-end evaluation latency per application.",
		Buckets:   prometheus.DefBuckets,
	})

	findingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "uwgate",
		Subsystem: "underwriting",
		Name:      "findings_total",
		Help:      "Agent findings by agent and status.",
	}, []string{"agent", "status"})

	registryRules = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "uwgate",
		Subsystem: "rules",
		Name:      "registry_rules",
		Help:      "Number of compiled rules in the active registry snapshot.",
	})
)

// ObserveDecision records one terminal decision and its latency.
func ObserveDecision(decision string, elapsed time.Duration) {
	decisionsTotal.WithLabelValues(decision).Inc()
	evaluationDuration.Observe(elapsed.Seconds())
}

// ObserveFinding records one agent finding.
func ObserveFinding(agent, status string) {
	findingsTotal.WithLabelValues(agent, status).Inc()
}

// SetRegistryRules tracks the active registry size across snapshot swaps.
func SetRegistryRules(n int) {
	registryRules.Set(float64(n))
}
