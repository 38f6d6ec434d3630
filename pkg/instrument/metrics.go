package instrument

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/cachestore/pkg/cachestore"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "cachestore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "cachestore",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for store activity. Create one per
// registry and share it between stores; the store name is a label.
type Metrics struct {
	dispatchesTotal  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	dispatchErrors   *prometheus.CounterVec
	mutationsTotal   *prometheus.CounterVec
	watchedCaches    prometheus.Gauge
}

// NewMetrics registers the collectors with the configured registry.
//
// Metrics collected:
//   - cachestore_dispatches_total: Counter of dispatches by store, action and status
//   - cachestore_dispatch_duration_seconds: Histogram of handler duration
//   - cachestore_dispatch_errors_total: Counter of failed dispatches by store and error type
//   - cachestore_mutations_total: Counter of change notifications by store and key
//   - cachestore_watched_caches: Gauge of caches observed by WatchCache
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		dispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatches_total",
			Help:        "Total number of actions dispatched",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "action", "status"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Action handler duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"store", "action"}),

		dispatchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_errors_total",
			Help:        "Total number of failed dispatches",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "error_type"}),

		mutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutations_total",
			Help:        "Total number of change notifications",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "key"}),

		watchedCaches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watched_caches",
			Help:        "Number of caches observed by WatchCache",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus is shorthand for NewMetrics(opts...).Middleware().
func Prometheus(opts ...MetricsOption) cachestore.Middleware {
	return NewMetrics(opts...).Middleware()
}

// Middleware returns dispatch middleware recording count, duration and
// errors. A panicking handler is recorded with status "panic" and the panic
// continues.
func (m *Metrics) Middleware() cachestore.Middleware {
	return cachestore.MiddlewareFunc(func(info *cachestore.DispatchInfo, next func() error) (err error) {
		action := info.ActionName()
		start := time.Now()

		status := "panic"
		defer func() {
			m.dispatchDuration.WithLabelValues(info.Store, action).Observe(time.Since(start).Seconds())
			m.dispatchesTotal.WithLabelValues(info.Store, action, status).Inc()
			if status == "panic" {
				m.dispatchErrors.WithLabelValues(info.Store, "panic").Inc()
			}
		}()

		err = next()

		status = "success"
		if err != nil {
			status = "error"
			m.dispatchErrors.WithLabelValues(info.Store, categorizeError(err)).Inc()
		}
		return err
	})
}

// WatchCache counts every change notification of c under the given store
// name. Writes made outside Dispatch are counted too. Call the returned
// function to stop watching.
func WatchCache[K comparable](m *Metrics, name string, c cachestore.Cache[K]) (stop func()) {
	m.watchedCaches.Inc()
	unsubscribe := c.Subscribe(cachestore.ListenerFunc[K](func(key K) {
		m.mutationsTotal.WithLabelValues(name, fmt.Sprint(key)).Inc()
	}))

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			m.watchedCaches.Dec()
		})
	}
}

// categorizeError returns a category for the error type.
// This prevents high-cardinality labels from error messages.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, cachestore.ErrNotHandled):
		return "not_handled"
	case errors.Is(err, cachestore.ErrMissingKey), errors.Is(err, cachestore.ErrTypeMismatch):
		return "key"
	default:
		return "handler"
	}
}
