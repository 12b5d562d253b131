// Package metrics exposes Prometheus collectors for the game server. All
// methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	moves           prometheus.Counter
	gamesFinished   *prometheus.CounterVec
	sendFailures    prometheus.Counter
	connections     prometheus.Gauge
}

// New registers the collectors on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chess",
			Name:      "commands_total",
			Help:      "Commands handled, by type and result code.",
		}, []string{"type", "code"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chess",
			Name:      "command_duration_seconds",
			Help:      "Time spent handling a command.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		moves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chess",
			Name:      "moves_total",
			Help:      "Moves committed.",
		}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chess",
			Name:      "games_finished_total",
			Help:      "Games reaching a terminal state, by method.",
		}, []string{"method"}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chess",
			Name:      "broadcast_send_failures_total",
			Help:      "Outbound messages that failed and pruned their connection.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chess",
			Name:      "ws_connections",
			Help:      "Open websocket connections.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.commands, m.commandDuration, m.moves, m.gamesFinished, m.sendFailures, m.connections,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveCommand(kind, code string, d time.Duration) {
	if m == nil {
		return
	}
	if code == "" {
		code = "OK"
	}
	m.commands.WithLabelValues(kind, code).Inc()
	m.commandDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) MoveCommitted() {
	if m != nil {
		m.moves.Inc()
	}
}

func (m *Metrics) GameFinished(method string) {
	if m != nil {
		m.gamesFinished.WithLabelValues(method).Inc()
	}
}

func (m *Metrics) SendFailed() {
	if m != nil {
		m.sendFailures.Inc()
	}
}

func (m *Metrics) ConnectionOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) ConnectionClosed() {
	if m != nil {
		m.connections.Dec()
	}
}
