package model

import (
	"time"
)

// Counters holds the raw cumulative byte counters the OS reports for one interface
type Counters struct {
	BytesReceived uint64 `json:"bytes_received"`
	BytesSent     uint64 `json:"bytes_sent"`
}

// InterfaceCounterSample is one capture of an interface's counters
type InterfaceCounterSample struct {
	InterfaceID   string    `json:"interface_id"`
	BytesReceived uint64    `json:"bytes_received"`
	BytesSent     uint64    `json:"bytes_sent"`
	ObservedAt    time.Time `json:"observed_at"`
}

// RateReading is the throughput derived from two consecutive samples
type RateReading struct {
	InterfaceID  string    `json:"interface_id"`
	InboundMbps  float64   `json:"inbound_mbps"`
	OutboundMbps float64   `json:"outbound_mbps"`
	ObservedAt   time.Time `json:"observed_at"`
}

// IsIdle reports whether both directions are exactly zero
func (r RateReading) IsIdle() bool {
	return r.InboundMbps == 0 && r.OutboundMbps == 0
}

// ThresholdProfile holds the per-class limits in Mbps
type ThresholdProfile struct {
	InboundLimitMbps  float64 `yaml:"inbound_mbps" json:"inbound_mbps"`
	OutboundLimitMbps float64 `yaml:"outbound_mbps" json:"outbound_mbps"`
}

// Verdict represents the classification of a reading
type Verdict int32

const (
	Verdict_NORMAL           Verdict = 0
	Verdict_ANOMALY_INBOUND  Verdict = 1
	Verdict_ANOMALY_OUTBOUND Verdict = 2
)

func (v Verdict) String() string {
	switch v {
	case Verdict_ANOMALY_INBOUND:
		return "ANOMALY_INBOUND"
	case Verdict_ANOMALY_OUTBOUND:
		return "ANOMALY_OUTBOUND"
	default:
		return "NORMAL"
	}
}

// IsAnomaly reports whether the verdict should be considered for alerting
func (v Verdict) IsAnomaly() bool {
	return v != Verdict_NORMAL
}


func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(text []byte) error {
	*v = ParseVerdict(string(text))
	return nil
}

// ParseVerdict is the inverse of Verdict.String; unknown values map to NORMAL
func ParseVerdict(s string) Verdict {
	switch s {
	case "ANOMALY_INBOUND":
		return Verdict_ANOMALY_INBOUND
	case "ANOMALY_OUTBOUND":
		return Verdict_ANOMALY_OUTBOUND
	default:
		return Verdict_NORMAL
	}
}

// ClassifiedReading is a reading together with the class it was judged against
type ClassifiedReading struct {
	RateReading
	Class   string  `json:"class"`
	Verdict Verdict `json:"verdict"`
}

// Record is the row appended to the recorder for every classified reading
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	InterfaceID  string    `json:"interface_id"`
	Class        string    `json:"class"`
	InboundMbps  float64   `json:"inbound_mbps"`
	OutboundMbps float64   `json:"outbound_mbps"`
	Verdict      Verdict   `json:"verdict"`
}

// NewRecord builds the recorder row for a classified reading
func NewRecord(cr ClassifiedReading) Record {
	return Record{
		Timestamp:    cr.ObservedAt,
		InterfaceID:  cr.InterfaceID,
		Class:        cr.Class,
		InboundMbps:  cr.InboundMbps,
		OutboundMbps: cr.OutboundMbps,
		Verdict:      cr.Verdict,
	}
}
