package core

import (
	"archrepo/pkg/domain"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.ObserveDebt(GovernanceDebtSummary{Total: 3})
	m.IncrementGate("Strict", "blocked")
	m.IncrementHistory("undo")
	m.IncrementScopeViolation()
	m.IncrementPersistFailure("quota")
	m.ObserveSettle(time.Now())
}

func TestSessionMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "")
	s := NewSession(SessionOptions{Now: fixedNow, Metrics: m})

	app := governedObject("app-1", domain.ObjectApplication)
	delete(app.Attributes, "ownerRole")
	model := domain.Model{Metadata: testMetadata(domain.GovernanceStrict, domain.ScopeEnterprise), Objects: []domain.Object{app}}
	if err := s.LoadSnapshot(ctx, mustSnapshot(t, model)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := testutil.ToFloat64(m.Debt.WithLabelValues("mandatory")); got != 1 {
		t.Fatalf("expected mandatory gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.GateDecisions.WithLabelValues("Strict", "blocked")); got != 1 {
		t.Fatalf("expected one blocked decision, got %v", got)
	}
	if _, err := s.SetAttribute(ctx, "app-1", "ownerRole", domain.String("Architect")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := testutil.ToFloat64(m.Debt.WithLabelValues("total")); got != 0 {
		t.Fatalf("expected total gauge 0, got %v", got)
	}
	s.Undo(ctx)
	s.Redo(ctx)
	if testutil.ToFloat64(m.HistoryMoves.WithLabelValues("undo")) != 1 || testutil.ToFloat64(m.HistoryMoves.WithLabelValues("redo")) != 1 {
		t.Fatalf("expected one undo and one redo")
	}
	if n, err := testutil.GatherAndCount(reg, "archrepo_settle_duration_seconds"); err != nil || n != 1 {
		t.Fatalf("expected settle histogram under default namespace, got %d (%v)", n, err)
	}
}
