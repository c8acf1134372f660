// Package metrics exposes Prometheus counters for upload tickets and badge unlocks.
package metrics

import (
	"net/http"

	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketplace"

type Metrics struct {
	registry *prometheus.Registry

	ticketsIssued  *prometheus.CounterVec
	ticketsFailed  *prometheus.CounterVec
	badgesUnlocked *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ticketsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "tickets_issued_total",
			Help:      "Upload tickets issued, by asset kind.",
		}, []string{"kind"}),
		ticketsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "tickets_failed_total",
			Help:      "Upload ticket requests rejected, by reason.",
		}, []string{"reason"}),
		badgesUnlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "badges",
			Name:      "unlocked_total",
			Help:      "Badges unlocked, by badge key.",
		}, []string{"badge"}),
	}

	reg.MustRegister(
		m.ticketsIssued,
		m.ticketsFailed,
		m.badgesUnlocked,
		collectors.NewGoCollector(),
	)

	return m
}

func (m *Metrics) TicketIssued(kind string) {
	if kind == "" {
		kind = "default"
	}
	m.ticketsIssued.WithLabelValues(kind).Inc()
}

func (m *Metrics) TicketFailed(reason string) {
	m.ticketsFailed.WithLabelValues(reason).Inc()
}

func (m *Metrics) BadgesUnlocked(keys []badges.BadgeKey) {
	for _, k := range keys {
		m.badgesUnlocked.WithLabelValues(string(k)).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
