// Package metrics exposes Prometheus collectors for the game engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "santa"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	commands       *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	draws          *prometheus.CounterVec
	reminders      *prometheus.CounterVec
	tickDuration   prometheus.Histogram
	activeSessions prometheus.Gauge
}

// New registers the collectors plus Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled, by command and error kind.",
		}, []string{"command", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification delivery attempts.",
		}, []string{"outcome"}),
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_total",
			Help:      "Draw attempts, by error kind.",
		}, []string{"outcome"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_total",
			Help:      "Reminder sentinels claimed, by type and delivery outcome.",
		}, []string{"type", "outcome"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_tick_duration_seconds",
			Help:      "Duration of one reminder scheduler pass.",
			Buckets:   prometheus.DefBuckets,
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flow_sessions_active",
			Help:      "Users currently inside a multi-step flow.",
		}),
	}

	reg.MustRegister(
		m.commands,
		m.notifications,
		m.draws,
		m.reminders,
		m.tickDuration,
		m.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCommand counts one handled command; outcome is OutcomeOK or an error kind.
func (m *Metrics) ObserveCommand(command, outcome string) {
	m.commands.WithLabelValues(command, outcome).Inc()
}

// ObserveDelivery counts one notification attempt.
func (m *Metrics) ObserveDelivery(err error) {
	m.notifications.WithLabelValues(outcomeOf(err)).Inc()
}

// ObserveDraw counts one draw attempt; outcome is OutcomeOK or an error kind.
func (m *Metrics) ObserveDraw(outcome string) {
	m.draws.WithLabelValues(outcome).Inc()
}

// ObserveReminder counts one claimed reminder.
func (m *Metrics) ObserveReminder(reminderType string, err error) {
	m.reminders.WithLabelValues(reminderType, outcomeOf(err)).Inc()
}

// ObserveTick records the duration of one scheduler pass.
func (m *Metrics) ObserveTick(d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}

// SetActiveSessions records the number of open flow sessions.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
