package client

import (
	"time"

	"network-ai-monitor/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	// Throughput gauges
	InboundMbps  *prometheus.GaugeVec
	OutboundMbps *prometheus.GaugeVec

	// Reading counters
	Readings           *prometheus.CounterVec
	ReadingsSuppressed prometheus.Counter
	SamplerSkips       prometheus.Counter

	// Collaborator failures
	CollectorErrors prometheus.Counter
	RecorderErrors  prometheus.Counter

	// Alert metrics
	AlertsSent       *prometheus.CounterVec
	AlertsSuppressed *prometheus.CounterVec
	AlertFailures    *prometheus.CounterVec

	TickDuration prometheus.Histogram
	Ticks        prometheus.Counter
}

// NewPrometheusMetrics registers every metric with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		InboundMbps: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netmon_interface_inbound_mbps",
			Help: "Last inbound throughput per interface in megabits per second",
		}, []string{"interface", "class"}),
		OutboundMbps: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netmon_interface_outbound_mbps",
			Help: "Last outbound throughput per interface in megabits per second",
		}, []string{"interface", "class"}),
		Readings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "netmon_readings_total",
			Help: "Classified readings by class and verdict",
		}, []string{"class", "verdict"}),
		ReadingsSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Name: "netmon_readings_suppressed_total",
			Help: "Idle readings skipped after warm-up",
		}),
		SamplerSkips: factory.NewCounter(prometheus.CounterOpts{
			Name: "netmon_sampler_skips_total",
			Help: "Interfaces skipped because the sampling interval was not positive",
		}),
		CollectorErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "netmon_collector_errors_total",
			Help: "Ticks aborted because interface counters could not be read",
		}),
		RecorderErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "netmon_recorder_errors_total",
			Help: "Readings the recorder failed to persist",
		}),
		AlertsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "netmon_alerts_sent_total",
			Help: "Notifications delivered per class",
		}, []string{"class"}),
		AlertsSuppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "netmon_alerts_suppressed_total",
			Help: "Anomalies not notified because the class was cooling down",
		}, []string{"class"}),
		AlertFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "netmon_alert_failures_total",
			Help: "Notification dispatches that failed or timed out",
		}, []string{"class"}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "netmon_tick_duration_seconds",
			Help:    "Time spent processing one monitor tick",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "netmon_ticks_total",
			Help: "Monitor ticks processed",
		}),
	}
}

// Observe updates the metrics from one tick snapshot.
func (m *PrometheusMetrics) Observe(snapshot model.TickSnapshot) {
	m.Ticks.Inc()
	for _, r := range snapshot.Readings {
		m.InboundMbps.WithLabelValues(r.InterfaceID, r.Class).Set(r.InboundMbps)
		m.OutboundMbps.WithLabelValues(r.InterfaceID, r.Class).Set(r.OutboundMbps)
		m.Readings.WithLabelValues(r.Class, r.Verdict.String()).Inc()
	}
	for _, a := range snapshot.Alerts {
		if a.Delivered {
			m.AlertsSent.WithLabelValues(a.Class).Inc()
		} else {
			m.AlertFailures.WithLabelValues(a.Class).Inc()
		}
	}
	m.SamplerSkips.Add(float64(len(snapshot.Skipped)))
	if snapshot.Err != "" {
		m.CollectorErrors.Inc()
	}
}

func (m *PrometheusMetrics) ObserveTickDuration(d time.Duration) {
	m.TickDuration.Observe(d.Seconds())
}

func (m *PrometheusMetrics) IncSuppressedReading() {
	m.ReadingsSuppressed.Inc()
}

func (m *PrometheusMetrics) IncSuppressedAlert(class string) {
	m.AlertsSuppressed.WithLabelValues(class).Inc()
}

func (m *PrometheusMetrics) IncRecorderError() {
	m.RecorderErrors.Inc()
}
