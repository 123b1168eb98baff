// Package metrics holds the Prometheus collectors of the rental service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"strconv"
	"time"
)

var (
	LedgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_rental_ledger_operations_total",
			Help: "Total number of rent and return operations by outcome",
		},
		[]string{"operation", "status"},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_rental_recommendations_total",
			Help: "Total number of recommendation requests by strategy and outcome",
		},
		[]string{"strategy", "outcome"}, // outcome: "ok", "empty", "no_rentals"
	)

	RecommendationSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "game_rental_recommendation_titles",
			Help:    "Number of titles returned per recommendation",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		},
		[]string{"strategy"},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_rental_auth_attempts_total",
			Help: "Total number of register and login attempts by outcome",
		},
		[]string{"operation", "outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "game_rental_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func RecordLedger(operation, status string) {
	LedgerOperations.WithLabelValues(operation, status).Inc()
}

func RecordRecommendation(strategy, outcome string, titles int) {
	Recommendations.WithLabelValues(strategy, outcome).Inc()
	RecommendationSize.WithLabelValues(strategy).Observe(float64(titles))
}

func RecordAuth(operation, outcome string) {
	AuthAttempts.WithLabelValues(operation, outcome).Inc()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
