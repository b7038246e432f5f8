package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Library Prometheus metrics.
var (
	LibraryOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mdrcore",
			Name:      "library_operation_duration_seconds",
			Help:      "Library operation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind", "operation"},
	)

	LibraryOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdrcore",
			Name:      "library_operations_total",
			Help:      "Total library operations",
		},
		[]string{"kind", "operation", "status"},
	)

	QueryItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdrcore",
			Name:      "query_items_total",
			Help:      "Items scanned by and returned from list queries",
		},
		[]string{"kind", "stage"}, // "scanned" / "returned"
	)
)

var registerLibraryOnce sync.Once

// RegisterLibraryMetrics registers the library metrics. Safe to call more than once.
func RegisterLibraryMetrics() {
	registerLibraryOnce.Do(func() {
		prometheus.MustRegister(LibraryOperationDuration)
		prometheus.MustRegister(LibraryOperationsTotal)
		prometheus.MustRegister(QueryItemsTotal)
	})
}
