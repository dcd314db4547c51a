// Package metric provides Prometheus metrics for redisnode-server.
//
// It exposes metrics in Prometheus format for monitoring connection
// counts, admission/rejection rates, idle-kick activity, and command
// throughput on the Redis wire-protocol front end.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the redis_* metrics exposed at /metrics, alongside
// whatever storage.BadgerEngine.RegisterMetrics registers into the same
// underlying *prometheus.Registry.
type Registry struct {
	prom *prometheus.Registry

	ClientsConnected Gauge
	ClientsMonitors  Gauge

	ClientsAdmittedTotal   Counter
	ClientsRejectedTotal   Counter
	ClientsIdleKickedTotal Counter

	CommandsTotal CounterVec
}

// Gauge is the subset of prometheus.Gauge this package depends on.
type Gauge interface {
	Set(float64)
}

// Counter is the subset of prometheus.Counter this package depends on.
type Counter interface {
	Inc()
}

// CounterVec is the subset of prometheus.CounterVec this package depends on.
type CounterVec interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

// NewRegistry builds and registers the redis_* metric family against prom.
// Passing the same *prometheus.Registry used elsewhere (e.g.
// storage.BadgerEngine.RegisterMetrics) means /metrics exposes both
// families from one handler.
func NewRegistry(prom *prometheus.Registry) *Registry {
	r := &Registry{prom: prom}

	r.ClientsConnected = promauto(prom, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "redisnode",
		Subsystem: "redis",
		Name:      "clients_connected",
		Help:      "Number of currently connected Redis clients across all workers.",
	}))

	r.ClientsMonitors = promauto(prom, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "redisnode",
		Subsystem: "redis",
		Name:      "clients_monitors",
		Help:      "Number of connections currently promoted to MONITOR.",
	}))

	r.ClientsAdmittedTotal = promautoCounter(prom, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "redisnode",
		Subsystem: "redis",
		Name:      "clients_admitted_total",
		Help:      "Total number of connections successfully admitted.",
	}))

	r.ClientsRejectedTotal = promautoCounter(prom, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "redisnode",
		Subsystem: "redis",
		Name:      "clients_rejected_total",
		Help:      "Total number of connections rejected at admission (duplicate fd or maxclients reached).",
	}))

	r.ClientsIdleKickedTotal = promautoCounter(prom, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "redisnode",
		Subsystem: "redis",
		Name:      "clients_idle_kicked_total",
		Help:      "Total number of connections removed for exceeding the idle timeout.",
	}))

	commandsVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "redisnode",
		Subsystem: "redis",
		Name:      "commands_total",
		Help:      "Total number of commands dispatched, labeled by command name.",
	}, []string{"command"})
	prom.MustRegister(commandsVec)
	r.CommandsTotal = commandsVec

	return r
}

func promauto(prom *prometheus.Registry, g prometheus.Gauge) prometheus.Gauge {
	prom.MustRegister(g)
	return g
}

func promautoCounter(prom *prometheus.Registry, c prometheus.Counter) prometheus.Counter {
	prom.MustRegister(c)
	return c
}

// Handler returns an HTTP handler serving reg in Prometheus exposition
// format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Prom returns the underlying *prometheus.Registry this Registry was built
// against, so callers (the admin HTTP server) can build a /metrics handler
// for it without this package importing net/http server plumbing.
func (r *Registry) Prom() *prometheus.Registry {
	return r.prom
}
