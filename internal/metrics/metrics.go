package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation job
	RecommendationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reeldiary_recommendation_runs_total",
			Help: "Recommendation job runs by result",
		},
		[]string{"result"}, // "success", "error", "skipped"
	)

	RecommendationRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reeldiary_recommendation_run_duration_seconds",
			Help:    "Wall-clock duration of a full recommendation run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	RecommendationUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reeldiary_recommendation_users_total",
			Help: "Users processed by the recommendation job by outcome",
		},
		[]string{"outcome"},
	)

	RecommendationsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reeldiary_recommendations_accepted_total",
			Help: "Accepted recommendations by category",
		},
		[]string{"category"},
	)

	CandidatesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reeldiary_candidates_rejected_total",
			Help: "Candidates dropped during validation by reason",
		},
		[]string{"reason"}, // "watched", "claimed", "no_details", "no_overview", "not_streaming"
	)

	// Catalog
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reeldiary_catalog_requests_total",
			Help: "Catalog API calls by endpoint and result",
		},
		[]string{"endpoint", "result"}, // result: "ok", "error", "cache_hit"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reeldiary_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reeldiary_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)
