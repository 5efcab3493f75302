package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCirculationMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCirculationMetrics(reg)

	m.IncTitleCreated()
	m.IncCheckoutConflict()
	m.IncCheckoutConflict()
	m.IncCopyCodeRetry()
	m.IncLoanTransition("OUT")

	if got := testutil.ToFloat64(m.titlesCreated); got != 1 {
		t.Fatalf("expected 1 title created, got %v", got)
	}
	if got := testutil.ToFloat64(m.checkoutConflict); got != 2 {
		t.Fatalf("expected 2 checkout conflicts, got %v", got)
	}
	if got := testutil.ToFloat64(m.copyCodeRetries); got != 1 {
		t.Fatalf("expected 1 copy code retry, got %v", got)
	}
	if got := testutil.ToFloat64(m.loanTransitions.WithLabelValues("out")); got != 1 {
		t.Fatalf("expected 1 loan transition, got %v", got)
	}
}

func TestCirculationMetricsNilSafe(t *testing.T) {
	var m *CirculationMetrics
	m.IncTitleCreated()
	m.IncCheckoutConflict()
	m.IncCopyCodeRetry()
	m.IncLoanTransition("returned")

	empty := NewCirculationMetrics(nil)
	empty.IncTitleCreated()
}
