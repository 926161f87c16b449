// Package metrics exposes the storage engine's operational counters to
// Prometheus, alongside the best-effort StatsD emission in pkg/statsd.
// Where StatsD is fire-and-forget UDP for an external collector, this
// package is the pull-based surface an operator's Prometheus server
// scrapes directly from the process.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts named operations, satisfying the Incr(name string)
// interface pkg/txn and pkg/reactor each declare for their optional
// metrics sink.
type Collector struct {
	ops *prometheus.CounterVec
}

// NewCollector builds a Collector and registers its metric against reg.
// Passing a fresh prometheus.NewRegistry() keeps it isolated from the
// global default registry, which matters when more than one Collector
// is constructed in the same process (tests, multi-engine hosting).
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memgraph_operations_total",
				Help: "Total number of storage engine operations, by name.",
			},
			[]string{"name"},
		),
	}
	reg.MustRegister(c.ops)
	return c
}

// Incr increments the counter for name.
func (c *Collector) Incr(name string) {
	c.ops.WithLabelValues(name).Inc()
}

// Handler returns an http.Handler serving reg's metrics in the
// Prometheus text exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
