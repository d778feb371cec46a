package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wbsync_api_requests_total",
			Help: "Seller API requests by operation and outcome",
		},
		[]string{"op", "outcome"}, // ok|retryable|fatal|not_found
	)

	APIRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wbsync_api_retries_total",
			Help: "Retry attempts by operation",
		},
		[]string{"op"},
	)

	RateWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wbsync_rate_wait_seconds",
			Help:    "Time spent waiting on the per-credential request budget",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 3, 10, 30},
		},
	)

	ReportPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wbsync_report_polls_total",
			Help: "Report poll attempts by kind and result",
		},
		[]string{"kind", "result"}, // ready|pending|invalid_id|expired
	)

	RowsWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wbsync_rows_written_total",
			Help: "Rows upserted into the store by table",
		},
		[]string{"table"},
	)

	ChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wbsync_chunks_total",
			Help: "Upsert chunks by table and outcome",
		},
		[]string{"table", "outcome"}, // committed|failed
	)

	TenantRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wbsync_tenant_runs_total",
			Help: "Per-tenant sync outcomes by kind",
		},
		[]string{"kind", "outcome"}, // ok|failed
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		APIRequestsTotal,
		APIRetriesTotal,
		RateWaitSeconds,
		ReportPollsTotal,
		RowsWrittenTotal,
		ChunksTotal,
		TenantRunsTotal,
	)
}
