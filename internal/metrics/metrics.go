package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics counts what the purchase engine does against the
// upstream gateways and the local ledger.
type EngineMetrics struct {
	SubmissionsTotal    *prometheus.CounterVec
	SubmissionFailures  *prometheus.CounterVec
	DirectoryFetches    *prometheus.CounterVec
	StatusPollsTotal    *prometheus.CounterVec
	LedgerPatchesTotal  prometheus.Counter
	LedgerRefreshsTotal prometheus.Counter
}

func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "plaque_submissions_total",
			Help: "Purchase submissions by flow and outcome",
		}, []string{"flow", "outcome"}),
		SubmissionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "plaque_submission_failures_total",
			Help: "Purchase submissions rejected upstream or unreachable",
		}, []string{"flow", "reason"}),
		DirectoryFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "plaque_directory_fetches_total",
			Help: "Currency and payment-method listing fetches",
		}, []string{"directory", "result"}),
		StatusPollsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "plaque_status_polls_total",
			Help: "Status reconciliation polls by result",
		}, []string{"result"}),
		LedgerPatchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "plaque_ledger_patches_total",
			Help: "Reconciliation patches applied to the ledger",
		}),
		LedgerRefreshsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "plaque_ledger_refreshes_total",
			Help: "Wholesale ledger refreshes from the purchases listing",
		}),
	}
}

// Recorder methods are nil-safe so tests can run without a registry.

func (m *EngineMetrics) Submission(flow, outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(flow, outcome).Inc()
}

func (m *EngineMetrics) SubmissionFailure(flow, reason string) {
	if m == nil {
		return
	}
	m.SubmissionFailures.WithLabelValues(flow, reason).Inc()
}

func (m *EngineMetrics) DirectoryFetch(directory, result string) {
	if m == nil {
		return
	}
	m.DirectoryFetches.WithLabelValues(directory, result).Inc()
}

func (m *EngineMetrics) StatusPoll(result string) {
	if m == nil {
		return
	}
	m.StatusPollsTotal.WithLabelValues(result).Inc()
}

func (m *EngineMetrics) LedgerPatch() {
	if m == nil {
		return
	}
	m.LedgerPatchesTotal.Inc()
}

func (m *EngineMetrics) LedgerRefresh() {
	if m == nil {
		return
	}
	m.LedgerRefreshsTotal.Inc()
}
