package observability

import "github.com/prometheus/client_golang/prometheus"

// FinanceMetrics counts posting outcomes. A nil receiver is a no-op so
// services can run without metrics in tests.
type FinanceMetrics struct {
	postings          *prometheus.CounterVec
	taxLedgerWarnings prometheus.Counter
	depreciationRuns  *prometheus.CounterVec
}

// NewFinanceMetrics registers the finance counters on reg.
func NewFinanceMetrics(reg prometheus.Registerer) *FinanceMetrics {
	m := &FinanceMetrics{
		postings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fincore_ledger_postings_total",
			Help: "Journal entries posted, by entry type.",
		}, []string{"type"}),
		taxLedgerWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fincore_tax_ledger_warnings_total",
			Help: "Tax payments whose journal entry could not be recorded.",
		}),
		depreciationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fincore_depreciation_run_assets_total",
			Help: "Assets handled by scheduled depreciation runs, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.postings, m.taxLedgerWarnings, m.depreciationRuns)
	return m
}

// LedgerPosted counts a posted entry.
func (m *FinanceMetrics) LedgerPosted(entryType string) {
	if m == nil {
		return
	}
	m.postings.WithLabelValues(entryType).Inc()
}

// TaxLedgerWarning counts a payment whose ledger posting failed.
func (m *FinanceMetrics) TaxLedgerWarning() {
	if m == nil {
		return
	}
	m.taxLedgerWarnings.Inc()
}

// DepreciationRunAsset counts one asset processed by a scheduled run.
func (m *FinanceMetrics) DepreciationRunAsset(outcome string) {
	if m == nil {
		return
	}
	m.depreciationRuns.WithLabelValues(outcome).Inc()
}
