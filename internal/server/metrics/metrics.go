// Package metrics holds the Prometheus collectors of the teamboard server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry      *prometheus.Registry
	rpcTotal      *prometheus.CounterVec
	rpcDuration   *prometheus.HistogramVec
	activeWatches *prometheus.GaugeVec
	rateLimited   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamboard",
			Name:      "rpc_requests_total",
			Help:      "Handled RPCs by method and status code.",
		}, []string{"method", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "teamboard",
			Name:      "rpc_duration_seconds",
			Help:      "Latency of unary RPCs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		activeWatches: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "teamboard",
			Name:      "active_watches",
			Help:      "Open watch streams by stream name.",
		}, []string{"stream"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamboard",
			Name:      "rate_limited_total",
			Help:      "Calls rejected by the authentication rate limiter.",
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		m.rpcTotal,
		m.rpcDuration,
		m.activeWatches,
		m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRPC records one finished call.
func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	m.rpcTotal.WithLabelValues(method, code).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

// WatchStarted bumps the gauge of stream and returns the matching decrement.
func (m *Metrics) WatchStarted(stream string) func() {
	g := m.activeWatches.WithLabelValues(stream)
	g.Inc()
	return g.Dec
}

func (m *Metrics) RateLimited(method string) {
	m.rateLimited.WithLabelValues(method).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
