package metrics

import "github.com/prometheus/client_golang/prometheus"

// Estimator Prometheus metrics.
var (
	EstimatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shardcost",
			Name:      "estimates_total",
			Help:      "Total number of cost estimates computed",
		},
		[]string{"operator", "status"},
	)

	EstimateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shardcost",
			Name:      "estimate_duration_seconds",
			Help:      "Cost estimate computation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"operator"},
	)

	TemplateRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shardcost",
			Name:      "template_runs_total",
			Help:      "Total number of query template runs",
		},
		[]string{"template", "status"},
	)
)

// RegisterEstimatorMetrics registers the estimator metrics with the default
// registry. Called once from the composition root (no init()).
func RegisterEstimatorMetrics() {
	prometheus.MustRegister(EstimatesTotal)
	prometheus.MustRegister(EstimateDuration)
	prometheus.MustRegister(TemplateRunsTotal)
}
