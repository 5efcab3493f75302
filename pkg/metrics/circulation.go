package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// CirculationMetrics records catalog and lending outcomes.
type CirculationMetrics struct {
	titlesCreated    prometheus.Counter
	checkoutConflict prometheus.Counter
	copyCodeRetries  prometheus.Counter
	loanTransitions  *prometheus.CounterVec
}

// NewCirculationMetrics registers the circulation metrics on the provided
// registerer. A nil registerer yields a no-op instance.
func NewCirculationMetrics(reg prometheus.Registerer) *CirculationMetrics {
	if reg == nil {
		return &CirculationMetrics{}
	}
	titlesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_titles_created_total",
		Help: "Titles committed to the catalog.",
	})
	checkoutConflict := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "circulation_checkout_conflicts_total",
		Help: "Checkout attempts that lost the copy reservation race.",
	})
	copyCodeRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_copy_code_retries_total",
		Help: "Copy code allocations retried after a unique conflict.",
	})
	loanTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circulation_loan_transitions_total",
		Help: "Loan status transitions by target status.",
	}, []string{"status"})
	reg.MustRegister(titlesCreated, checkoutConflict, copyCodeRetries, loanTransitions)
	return &CirculationMetrics{
		titlesCreated:    titlesCreated,
		checkoutConflict: checkoutConflict,
		copyCodeRetries:  copyCodeRetries,
		loanTransitions:  loanTransitions,
	}
}

// IncTitleCreated counts a committed title.
func (m *CirculationMetrics) IncTitleCreated() {
	if m == nil || m.titlesCreated == nil {
		return
	}
	m.titlesCreated.Inc()
}

// IncCheckoutConflict counts a lost reservation race.
func (m *CirculationMetrics) IncCheckoutConflict() {
	if m == nil || m.checkoutConflict == nil {
		return
	}
	m.checkoutConflict.Inc()
}

// IncCopyCodeRetry counts one optimistic retry of the copy code generator.
func (m *CirculationMetrics) IncCopyCodeRetry() {
	if m == nil || m.copyCodeRetries == nil {
		return
	}
	m.copyCodeRetries.Inc()
}

// IncLoanTransition counts a loan moving into the named status.
func (m *CirculationMetrics) IncLoanTransition(status string) {
	if m == nil || m.loanTransitions == nil {
		return
	}
	m.loanTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
