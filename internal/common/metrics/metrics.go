// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	UnderwritingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_decisions_total",
			Help: "Underwriting decisions by outcome",
		},
		[]string{"decision"},
	)

	AUSRecommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aus_recommendations_total",
			Help: "Dual AUS runs by reconciled recommendation",
		},
		[]string{"recommendation"},
	)

	RulesFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_rules_fired_total",
			Help: "Rule firings by action type",
		},
		[]string{"action"},
	)

	LenderQuotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lender_quotes_total",
			Help: "Lender rate quotes by source",
		},
		[]string{"source"}, // api, cache, simulated
	)
)
