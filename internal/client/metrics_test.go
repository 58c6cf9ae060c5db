package client

import (
	"testing"
	"time"

	"network-ai-monitor/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.Observe(model.TickSnapshot{
		Tick: 3,
		Readings: []model.ClassifiedReading{
			{RateReading: model.RateReading{InterfaceID: "eth0", InboundMbps: 20, OutboundMbps: 1}, Class: "ethernet", Verdict: model.Verdict_ANOMALY_INBOUND},
			{RateReading: model.RateReading{InterfaceID: "wlan0", InboundMbps: 0.2}, Class: "wifi", Verdict: model.Verdict_NORMAL},
		},
		Alerts: []model.AlertEvent{
			{Class: "ethernet", Delivered: true},
			{Class: "wifi", Delivered: false},
		},
		Skipped: []string{"tun0"},
	})
	m.Observe(model.TickSnapshot{Tick: 4, Err: "collaborator unavailable"})
	m.IncSuppressedReading()
	m.IncSuppressedAlert("ethernet")
	m.IncRecorderError()
	m.ObserveTickDuration(5 * time.Millisecond)

	if got := testutil.ToFloat64(m.InboundMbps.WithLabelValues("eth0", "ethernet")); got != 20 {
		t.Fatalf("inbound gauge=%v", got)
	}
	if got := testutil.ToFloat64(m.Readings.WithLabelValues("ethernet", "ANOMALY_INBOUND")); got != 1 {
		t.Fatalf("readings=%v", got)
	}
	if got := testutil.ToFloat64(m.AlertsSent.WithLabelValues("ethernet")); got != 1 {
		t.Fatalf("alerts sent=%v", got)
	}
	if got := testutil.ToFloat64(m.AlertFailures.WithLabelValues("wifi")); got != 1 {
		t.Fatalf("alert failures=%v", got)
	}
	if got := testutil.ToFloat64(m.SamplerSkips); got != 1 {
		t.Fatalf("skips=%v", got)
	}
	if got := testutil.ToFloat64(m.CollectorErrors); got != 1 {
		t.Fatalf("collector errors=%v", got)
	}
	if got := testutil.ToFloat64(m.Ticks); got != 2 {
		t.Fatalf("ticks=%v", got)
	}
	if got := testutil.ToFloat64(m.AlertsSuppressed.WithLabelValues("ethernet")); got != 1 {
		t.Fatalf("suppressed alerts=%v", got)
	}
	if n := testutil.CollectAndCount(m.TickDuration); n != 1 {
		t.Fatalf("histogram series=%d", n)
	}
}
