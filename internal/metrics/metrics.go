// Package metrics exposes Prometheus counters for editing sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pathbuilder/core/internal/changes"
)

// Collector holds the metrics of one server on its own registry.
type Collector struct {
	registry *prometheus.Registry

	Changes  *prometheus.CounterVec
	History  *prometheus.CounterVec
	Imports  *prometheus.CounterVec
	Skipped  prometheus.Counter
	Repaints prometheus.Counter
	Sessions prometheus.Gauge
	Rejected *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Changes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "changes_recorded_total",
				Help:      "Changes recorded in session logs",
			},
			[]string{"kind"},
		),
		History: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_steps_total",
				Help:      "Undo and redo steps applied",
			},
			[]string{"direction"},
		),
		Imports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "imports_total",
				Help:      "Import requests by result",
			},
			[]string{"result"},
		),
		Skipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_records_skipped_total",
				Help:      "Import records skipped as invalid",
			},
		),
		Repaints: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "repaints_total",
				Help:      "Scene repaints pushed to subscribers",
			},
		),
		Sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Open editing sessions",
			},
		),
		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_rejected_total",
				Help:      "Edits rejected with an error",
			},
			[]string{"reason"},
		),
	}

	c.registry.MustRegister(
		c.Changes,
		c.History,
		c.Imports,
		c.Skipped,
		c.Repaints,
		c.Sessions,
		c.Rejected,
	)
	return c
}

// ObserveChange counts log events; pass it to changes.WithObserver.
func (c *Collector) ObserveChange(event string, ch changes.Change) {
	switch event {
	case changes.EventRecord:
		c.Changes.WithLabelValues(ch.Kind.String()).Inc()
	case changes.EventUndo, changes.EventRedo:
		c.History.WithLabelValues(event).Inc()
	}
}

// ObserveImport counts one import and its skipped records.
func (c *Collector) ObserveImport(err error, skipped int) {
	if err != nil {
		c.Imports.WithLabelValues("failed").Inc()
		return
	}
	c.Imports.WithLabelValues("loaded").Inc()
	c.Skipped.Add(float64(skipped))
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
