package model

import (
	"errors"
	"time"
)

// ErrCollaboratorUnavailable wraps failures of the OS counter source, recorders and notifiers.
// None of them is fatal to the monitor loop.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

type AlertEvent struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	InterfaceID  string    `json:"interface_id"`
	Class        string    `json:"class"`
	Verdict      Verdict   `json:"verdict"`
	InboundMbps  float64   `json:"inbound_mbps"`
	OutboundMbps float64   `json:"outbound_mbps"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	Delivered    bool      `json:"delivered"`
	Error        string    `json:"error,omitempty"`
}

// TickSnapshot is the immutable result of one monitor tick handed to observers
type TickSnapshot struct {
	Tick      uint64              `json:"tick"`
	Timestamp time.Time           `json:"timestamp"`
	Readings  []ClassifiedReading `json:"readings"`
	Alerts    []AlertEvent        `json:"alerts,omitempty"`
	Skipped   []string            `json:"skipped,omitempty"`
	Err       string              `json:"error,omitempty"`
}

// Copy returns a deep copy so observers never share slices with the loop
func (s TickSnapshot) Copy() TickSnapshot {
	out := s
	if s.Readings != nil {
		out.Readings = make([]ClassifiedReading, len(s.Readings))
		copy(out.Readings, s.Readings)
	}
	if s.Alerts != nil {
		out.Alerts = make([]AlertEvent, len(s.Alerts))
		copy(out.Alerts, s.Alerts)
	}
	if s.Skipped != nil {
		out.Skipped = make([]string, len(s.Skipped))
		copy(out.Skipped, s.Skipped)
	}
	return out
}
