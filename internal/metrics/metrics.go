// Package metrics exposes Prometheus instrumentation for RPCs and table access.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "slidemaker"

// Metrics holds all collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec

	tableWrites         *prometheus.CounterVec
	tableConflicts      *prometheus.CounterVec
	tableDecodeFailures *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		tableWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_writes_total",
			Help:      "Successful full-document writes per key.",
		}, []string{"table"}),
		tableConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_conflicts_total",
			Help:      "Compare-and-swap conflicts per key.",
		}, []string{"table"}),
		tableDecodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_decode_failures_total",
			Help:      "Stored documents that failed to decode and were treated as empty.",
		}, []string{"table"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.tableWrites,
		m.tableConflicts,
		m.tableDecodeFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRPC records one finished RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// TableWrite implements tables.Observer.
func (m *Metrics) TableWrite(table string) {
	m.tableWrites.WithLabelValues(table).Inc()
}

// TableConflict implements tables.Observer.
func (m *Metrics) TableConflict(table string) {
	m.tableConflicts.WithLabelValues(table).Inc()
}

// TableDecodeFailure implements tables.Observer.
func (m *Metrics) TableDecodeFailure(table string) {
	m.tableDecodeFailures.WithLabelValues(table).Inc()
}
