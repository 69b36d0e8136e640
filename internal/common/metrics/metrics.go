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

	// Pipeline

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burnout_predictions_total",
			Help: "Predictions produced, by source (local_analysis, hybrid_ai, fallback)",
		},
		[]string{"source"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "burnout_prediction_duration_seconds",
			Help:    "End-to-end prediction pipeline duration",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
		},
		[]string{"source"},
	)

	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burnout_ai_requests_total",
			Help: "Calls gated on the remote model, by outcome (unavailable, skipped_no_data, failed, success)",
		},
		[]string{"outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burnout_cache_lookups_total",
			Help: "Cache lookups by key family and result (hit, miss, error)",
		},
		[]string{"family", "result"},
	)

	ThresholdAlertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burnout_threshold_alerts_total",
			Help: "Realtime metric readings that crossed the alert threshold",
		},
		[]string{"metric"},
	)
)
