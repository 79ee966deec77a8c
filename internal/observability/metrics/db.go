package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notes"

var queryBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

var (
	// DBPoolConnections is labelled by state: acquired, idle, max or total.
	// Both drivers report into it.
	DBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "pool_connections",
			Help:      "Database connections by pool state",
		},
		[]string{"state"},
	)

	DBQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   queryBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Database query failures by operation, table and Go error type",
		},
		[]string{"operation", "table", "error_type"},
	)
)

func SetPoolConnections(acquired, idle, max, total float64) {
	DBPoolConnections.WithLabelValues("acquired").Set(acquired)
	DBPoolConnections.WithLabelValues("idle").Set(idle)
	DBPoolConnections.WithLabelValues("max").Set(max)
	DBPoolConnections.WithLabelValues("total").Set(total)
}
