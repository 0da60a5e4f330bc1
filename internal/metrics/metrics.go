// Package metrics declares the Prometheus collectors for workers and completion calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for worker invocations
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeCrash   = "crash"
)

// Result labels for completion calls
const (
	CallSuccess  = "success"
	CallFailure  = "failure"
	CallRejected = "budget_rejected"
)

var (
	WorkerMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobhunter_worker_messages_total",
			Help: "Total number of messages processed per worker and outcome",
		},
		[]string{"worker", "outcome"},
	)

	WorkerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobhunter_worker_failures_total",
			Help: "Total number of worker failures per error code",
		},
		[]string{"worker", "error_code"},
	)

	WorkerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobhunter_worker_duration_seconds",
			Help:    "Duration of worker invocations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"worker"},
	)

	WorkersActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobhunter_workers_active",
			Help: "Number of in-flight invocations per worker",
		},
		[]string{"worker"},
	)

	CompletionCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobhunter_completion_calls_total",
			Help: "Total number of completion calls by result",
		},
		[]string{"result"},
	)

	RecordsAnalyzed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobhunter_records_analyzed_total",
			Help: "Total number of records that produced an analysis",
		},
	)
)

// ObserveWorker records one finished invocation
func ObserveWorker(worker, outcome string, started time.Time) {
	WorkerMessages.WithLabelValues(worker, outcome).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(time.Since(started).Seconds())
}
