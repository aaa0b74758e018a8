// Package metrics exposes Prometheus collectors for the reminder daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reminderd"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ticks         *prometheus.CounterVec
	notifications *prometheus.CounterVec
	pushResults   *prometheus.CounterVec
	queueDropped  prometheus.Counter
	intakeEvents  *prometheus.GaugeVec
	adherence     prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Reminder ticks executed, by scheduler.",
		}, []string{"scheduler"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Reminders handed to the notification sink, by kind.",
		}, []string{"kind"}),
		pushResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_deliveries_total",
			Help:      "Web push delivery attempts, by result.",
		}, []string{"result"}),
		queueDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_queue_dropped_total",
			Help:      "Notifications dropped because the delivery queue was full.",
		}),
		intakeEvents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "intake_events",
			Help:      "Today's intake events at the last tick, by urgency status.",
		}, []string{"status"}),
		adherence: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "adherence_percent",
			Help:      "Seven-day adherence percentage; -1 when nothing was scheduled.",
		}),
	}

	reg.MustRegister(
		m.ticks, m.notifications, m.pushResults, m.queueDropped, m.intakeEvents, m.adherence,
		collectors.NewGoCollector(),
	)
	m.adherence.Set(-1)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordTick(scheduler string) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(scheduler).Inc()
}

func (m *Metrics) RecordNotifications(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.notifications.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) RecordPush(success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.pushResults.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordQueueDropped() {
	if m == nil {
		return
	}
	m.queueDropped.Inc()
}

// SetIntakeEvents replaces the per-status gauges. Statuses missing from counts read 0.
func (m *Metrics) SetIntakeEvents(statuses []string, counts map[string]int) {
	if m == nil {
		return
	}
	for _, s := range statuses {
		m.intakeEvents.WithLabelValues(s).Set(float64(counts[s]))
	}
}

// SetAdherence publishes the adherence percentage, or -1 for "no data".
func (m *Metrics) SetAdherence(percentage *int) {
	if m == nil {
		return
	}
	if percentage == nil {
		m.adherence.Set(-1)
		return
	}
	m.adherence.Set(float64(*percentage))
}
