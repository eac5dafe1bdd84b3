package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes repository session observability. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	// Debt is the latest governance debt by component.
	Debt *prometheus.GaugeVec
	// GateDecisions counts settles by governance mode and outcome.
	GateDecisions *prometheus.CounterVec
	// HistoryMoves counts applied undo and redo steps.
	HistoryMoves *prometheus.CounterVec
	// ScopeViolations counts mutations reverted by the scope policy.
	ScopeViolations prometheus.Counter
	// PersistFailures counts best-effort saves that failed, by reason.
	PersistFailures *prometheus.CounterVec
	// SettleDuration observes debt recomputation plus gating.
	SettleDuration prometheus.Histogram
}

// NewMetrics registers session metrics on reg under namespace. A nil reg
// uses the default registerer.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "archrepo"
	}
	factory := promauto.With(reg)
	return &Metrics{
		Debt: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "governance_debt",
			Help:      "Current governance debt by component",
		}, []string{"component"}), // mandatory, relationship_errors, relationship_warnings, invalid_relationships, lifecycle_tags, total

		GateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Governance gate settles by mode and outcome",
		}, []string{"mode", "outcome"}), // outcome: persisted, blocked, warned

		HistoryMoves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_moves_total",
			Help:      "Applied undo and redo steps",
		}, []string{"direction"}),

		ScopeViolations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scope_violations_total",
			Help:      "Mutations reverted because they touched read-only element types",
		}),

		PersistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Failed best-effort snapshot saves by reason",
		}, []string{"reason"}), // reason: quota, error

		SettleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settle_duration_seconds",
			Help:      "Duration of debt recomputation and governance gating",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),
	}
}

// ObserveDebt publishes the summary counts.
func (m *Metrics) ObserveDebt(s GovernanceDebtSummary) {
	if m == nil {
		return
	}
	m.Debt.WithLabelValues("mandatory").Set(float64(s.MandatoryFindingCount))
	m.Debt.WithLabelValues("relationship_errors").Set(float64(s.RelationshipErrorCount))
	m.Debt.WithLabelValues("relationship_warnings").Set(float64(s.RelationshipWarningCount))
	m.Debt.WithLabelValues("invalid_relationships").Set(float64(s.InvalidRelationshipInsertCount))
	m.Debt.WithLabelValues("lifecycle_tags").Set(float64(s.LifecycleTagMissingCount))
	m.Debt.WithLabelValues("total").Set(float64(s.Total))
}

// IncrementGate records one gate decision.
func (m *Metrics) IncrementGate(mode, outcome string) {
	if m != nil {
		m.GateDecisions.WithLabelValues(mode, outcome).Inc()
	}
}

// IncrementHistory records an applied undo ("undo") or redo ("redo").
func (m *Metrics) IncrementHistory(direction string) {
	if m != nil {
		m.HistoryMoves.WithLabelValues(direction).Inc()
	}
}

// IncrementScopeViolation records a reverted mutation.
func (m *Metrics) IncrementScopeViolation() {
	if m != nil {
		m.ScopeViolations.Inc()
	}
}

// IncrementPersistFailure records a failed save.
func (m *Metrics) IncrementPersistFailure(reason string) {
	if m != nil {
		m.PersistFailures.WithLabelValues(reason).Inc()
	}
}

// ObserveSettle records the duration of a settle started at start.
func (m *Metrics) ObserveSettle(start time.Time) {
	if m != nil {
		m.SettleDuration.Observe(time.Since(start).Seconds())
	}
}
