// Package metrics provides Prometheus metrics for the channel pipelines.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voicebridge"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal  *prometheus.CounterVec
	StageFailures  *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	Deliveries     *prometheus.CounterVec
	AudioFallbacks *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers all metrics on reg
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Inbound requests per channel and input kind",
		}, []string{"channel", "input"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Pipeline stage failures per channel",
		}, []string{"channel", "stage"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"channel", "stage"}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Outbound replies per channel, kind and outcome",
		}, []string{"channel", "kind", "outcome"}),
		AudioFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_fallbacks_total",
			Help:      "Audio repair and raw-bytes fallbacks taken",
		}, []string{"channel", "fallback"}),
		gatherer: reg,
	}
}

// RecordRequest counts an inbound request
func (m *Metrics) RecordRequest(channel, input string) {
	m.RequestsTotal.WithLabelValues(channel, input).Inc()
}

// ObserveStage records a stage duration and counts the failure when err is non-nil
func (m *Metrics) ObserveStage(channel, stage string, started time.Time, err error) {
	m.StageDuration.WithLabelValues(channel, stage).Observe(time.Since(started).Seconds())
	if err != nil {
		m.StageFailures.WithLabelValues(channel, stage).Inc()
	}
}

// RecordDelivery counts an outbound send
func (m *Metrics) RecordDelivery(channel, kind string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.Deliveries.WithLabelValues(channel, kind, outcome).Inc()
}

// RecordFallback counts a degraded path being taken
func (m *Metrics) RecordFallback(channel, fallback string) {
	m.AudioFallbacks.WithLabelValues(channel, fallback).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
