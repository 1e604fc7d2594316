package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tvmeta/internal/metastore"
)

const namespace = "tvmeta"

// Collector owns a private registry with the resolver, catalog, and sweeper
// series. A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	resolutions   *prometheus.CounterVec
	remoteCalls   *prometheus.CounterVec
	remoteLatency *prometheus.HistogramVec
	sweptRows     *prometheus.CounterVec
}

// New builds a Collector registered against a fresh registry.
func New() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := &Collector{
		registry: registry,
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Resolution calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "Remote catalog requests by endpoint and status class",
		}, []string{"endpoint", "status"}),
		remoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Remote catalog request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		sweptRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "swept_rows_total",
			Help:      "Rows removed by staleness sweeps by entity",
		}, []string{"entity"}),
	}
	registry.MustRegister(c.resolutions, c.remoteCalls, c.remoteLatency, c.sweptRows)
	return c
}

// Registry exposes the underlying registry for tests and custom exporters.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveResolution counts one resolver call.
func (c *Collector) ObserveResolution(operation, outcome string) {
	if c == nil {
		return
	}
	c.resolutions.WithLabelValues(operation, outcome).Inc()
}

// ObserveRemote records a catalog request. A zero status means the request
// never produced a response.
func (c *Collector) ObserveRemote(endpoint string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.remoteCalls.WithLabelValues(endpoint, StatusClass(status)).Inc()
	c.remoteLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveSweep adds the rows removed by one sweep.
func (c *Collector) ObserveSweep(result metastore.SweepResult) {
	if c == nil {
		return
	}
	c.sweptRows.WithLabelValues(string(metastore.KindArtwork)).Add(float64(result.Artworks))
	c.sweptRows.WithLabelValues(string(metastore.KindEpisode)).Add(float64(result.Episodes))
	c.sweptRows.WithLabelValues(string(metastore.KindSeason)).Add(float64(result.Seasons))
	c.sweptRows.WithLabelValues(string(metastore.KindSeries)).Add(float64(result.Series))
}

// StatusClass buckets an HTTP status into 2xx/4xx/5xx style labels.
func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
