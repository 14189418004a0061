package observability

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
)

// Store call outcomes used as the status label.
const (
	StatusOK              = "ok"
	StatusConditionFailed = "condition_failed"
	StatusRetryable       = "retryable_error"
	StatusError           = "error"
)

// Collector holds the Prometheus metrics of the data-access layer. Each
// collector owns its registry, so tests can create as many as they need.
type Collector struct {
	registry *prometheus.Registry

	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
	SequenceValues  *prometheus.CounterVec
}

// NewCollector creates a collector whose metrics are prefixed by namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	storeOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of store operations by outcome",
		},
		[]string{"operation", "status"},
	)

	storeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)

	sequenceValues := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_increments_total",
			Help:      "Total number of counter increments by attribute",
		},
		[]string{"attribute"},
	)

	registry.MustRegister(storeOperations, storeDuration, sequenceValues)

	return &Collector{
		registry:        registry,
		StoreOperations: storeOperations,
		StoreDuration:   storeDuration,
		SequenceValues:  sequenceValues,
	}
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// StatusOf classifies a store error for metrics and logs.
func StatusOf(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, persistence.ErrConditionFailed):
		return StatusConditionFailed
	case apperrors.IsRetryable(err):
		return StatusRetryable
	default:
		return StatusError
	}
}
