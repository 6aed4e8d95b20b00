// Package metrics defines Prometheus metric types tracking connection
// pool health and request latency, the way tcp-info's metrics package
// tracks netlink polling health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestLatency tracks round-trip time from request write to response
	// read, labeled by message kind (RUN, PULL_ALL, COMMIT, ...).
	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bolt_request_latency_seconds",
			Help: "round-trip latency of a single Bolt request, by message kind",
			Buckets: []float64{
				0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
			},
		},
		[]string{"kind"},
	)

	// ConnectionsOpened counts successful handshake+init cycles.
	ConnectionsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bolt_connections_opened_total",
			Help: "total connections that completed handshake and session init",
		},
	)

	// ConnectionsDefunct counts transitions into the Defunct state, labeled
	// by cause (io, handshake, init_failed, protocol).
	ConnectionsDefunct = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bolt_connections_defunct_total",
			Help: "total connections that transitioned to Defunct, by cause",
		},
		[]string{"cause"},
	)

	// PoolSize reports the current count of pooled connections, labeled by
	// state (idle, in_use).
	PoolSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bolt_pool_connections",
			Help: "connections currently held by the pool, by state",
		},
		[]string{"state"},
	)

	// RecordsStreamed counts Record responses received, labeled by the
	// negotiated Bolt version.
	RecordsStreamed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bolt_records_streamed_total",
			Help: "total Record responses received, by negotiated version",
		},
		[]string{"version"},
	)

	// IdleReaped counts idle connections the pool's reaper closed because
	// they were broken or failed validation.
	IdleReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bolt_pool_idle_reaped_total",
			Help: "total idle pooled connections closed by the reaper as broken or failing validation",
		},
	)
)
