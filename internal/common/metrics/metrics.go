// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InteractionsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_handled_total",
			Help: "Total number of interactions handled successfully",
		},
		[]string{"handler"},
	)

	InteractionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_failed_total",
			Help: "Total number of interactions that ended in an error",
		},
		[]string{"handler", "error_code"},
	)

	InteractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interaction_duration_seconds",
			Help:    "Duration of interaction handling in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 60, 180},
		},
		[]string{"handler"},
	)

	InteractionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "interactions_active",
			Help: "Number of interactions currently being handled",
		},
		[]string{"handler"},
	)
)
