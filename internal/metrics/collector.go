package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics of the service. Each Collector owns
// its registry so tests can create as many as they need.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Indexing metrics
	IndexRuns         *prometheus.CounterVec
	IndexDuration     prometheus.Histogram
	IndexedResources  prometheus.Gauge
	FetchFailures     prometheus.Counter
	LastSuccessfulRun prometheus.Gauge
}

// NewCollector creates a metrics collector with the given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		IndexRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "index_runs_total",
				Help:      "Total number of indexing runs by outcome",
			},
			[]string{"outcome"},
		),
		IndexDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "index_run_duration_seconds",
				Help:      "Duration of indexing runs in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		IndexedResources: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "indexed_resources",
				Help:      "Number of resources in the latest successful run",
			},
		),
		FetchFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_failures_total",
				Help:      "Total number of failed hierarchy fetches",
			},
		),
		LastSuccessfulRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_successful_run_timestamp_seconds",
				Help:      "Unix time of the latest successful indexing run",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.IndexRuns,
		c.IndexDuration,
		c.IndexedResources,
		c.FetchFailures,
		c.LastSuccessfulRun,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordRun records the outcome of one indexing run.
func (c *Collector) RecordRun(outcome string, resources int, duration time.Duration) {
	c.IndexRuns.WithLabelValues(outcome).Inc()
	c.IndexDuration.Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		c.IndexedResources.Set(float64(resources))
		c.LastSuccessfulRun.SetToCurrentTime()
	}
}

// Run outcomes used as the index_runs_total label.
const (
	OutcomeSuccess     = "success"
	OutcomeFetchError  = "fetch_error"
	OutcomeDecodeError = "decode_error"
	OutcomeStoreError  = "store_error"
)

// Middleware records request counts and durations per chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
