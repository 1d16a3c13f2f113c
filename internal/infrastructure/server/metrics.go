package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/doeshing/apex/internal/domain"
)

// metrics are registered on a per-server registry so several servers (and
// tests) can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	utterances *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	rejected   *prometheus.CounterVec
	websockets prometheus.Gauge
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &metrics{
		registry: registry,
		utterances: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apex_utterances_total",
				Help: "Utterances processed, by route and outcome",
			},
			[]string{"transport", "route", "success"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apex_utterance_duration_seconds",
				Help:    "Time spent processing one utterance",
				Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
			},
			[]string{"route"},
		),
		rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apex_rejected_requests_total",
				Help: "Requests refused before reaching the orchestrator",
			},
			[]string{"transport", "reason"},
		),
		websockets: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "apex_websocket_connections",
				Help: "Open websocket connections",
			},
		),
	}
}

func (m *metrics) observe(transport string, rec domain.OutcomeRecord) {
	m.utterances.WithLabelValues(transport, string(rec.Route), strconv.FormatBool(rec.Success)).Inc()
	m.duration.WithLabelValues(string(rec.Route)).Observe(float64(rec.DurationMS) / 1000)
}

func (m *metrics) reject(transport, reason string) {
	m.rejected.WithLabelValues(transport, reason).Inc()
}
