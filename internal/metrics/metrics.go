// Package metrics exposes Prometheus instrumentation for network builds,
// snapshot ingestion, and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Build results.
const (
	ResultOK          = "ok"
	ResultUnavailable = "unavailable"
	ResultMalformed   = "malformed"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns a private registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	Builds        *prometheus.CounterVec
	BuildDuration prometheus.Histogram

	Generation prometheus.Gauge
	Concepts   prometheus.Gauge
	Edges      prometheus.Gauge
	Recorded   prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with every metric registered under
// namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_builds_total",
			Help:      "Total number of concept network builds by result",
		}, []string{"result"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "network_build_duration_seconds",
			Help:      "Time spent reading, parsing and aggregating a snapshot",
			Buckets:   prometheus.DefBuckets,
		}),
		Generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_generation",
			Help:      "Generation of the most recently built snapshot",
		}),
		Concepts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_concepts",
			Help:      "Number of concept nodes in the most recent build",
		}),
		Edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_edges",
			Help:      "Number of concept edges in the most recent build",
		}),
		Recorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_recorded_total",
			Help:      "Total number of snapshots written to the archive",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		c.Builds,
		c.BuildDuration,
		c.Generation,
		c.Concepts,
		c.Edges,
		c.Recorded,
		c.HTTPRequests,
		c.HTTPDuration,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveBuild records the outcome of one network build.
func (c *Collector) ObserveBuild(result string, elapsed time.Duration) {
	c.Builds.WithLabelValues(result).Inc()
	c.BuildDuration.Observe(elapsed.Seconds())
}

// SetNetwork records the shape of the latest successful build.
func (c *Collector) SetNetwork(generation int64, concepts, edges int) {
	c.Generation.Set(float64(generation))
	c.Concepts.Set(float64(concepts))
	c.Edges.Set(float64(edges))
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Middleware counts requests by chi route pattern so path parameters do not
// explode label cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
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
