package sampler

import (
	"errors"
	"fmt"
	"time"

	"network-ai-monitor/internal/model"
)

// ErrNonPositiveInterval is returned when a sample is not strictly newer than the previous one
// for the same interface. The caller skips the interface for this tick.
var ErrNonPositiveInterval = errors.New("non-positive sampling interval")

const bytesPerMegabit = 1024 * 1024

// RateSampler converts cumulative counters into Mbps readings.
// The state map is owned by the sampler and must only be touched from the tick goroutine.
type RateSampler struct {
	state map[string]model.InterfaceCounterSample
}

func NewRateSampler() *RateSampler {
	return &RateSampler{
		state: make(map[string]model.InterfaceCounterSample),
	}
}

// Sample computes the throughput since the previous sample of interfaceID.
// The first sample of an interface yields a zero reading and seeds the baseline.
func (s *RateSampler) Sample(interfaceID string, counters model.Counters, now time.Time) (model.RateReading, error) {
	current := model.InterfaceCounterSample{
		InterfaceID:   interfaceID,
		BytesReceived: counters.BytesReceived,
		BytesSent:     counters.BytesSent,
		ObservedAt:    now,
	}

	prev, seen := s.state[interfaceID]
	if !seen {
		s.state[interfaceID] = current
		return model.RateReading{InterfaceID: interfaceID, ObservedAt: now}, nil
	}

	elapsed := now.Sub(prev.ObservedAt)
	if elapsed <= 0 {
		return model.RateReading{}, fmt.Errorf("%w: interface %s elapsed %v", ErrNonPositiveInterval, interfaceID, elapsed)
	}

	seconds := elapsed.Seconds()
	reading := model.RateReading{
		InterfaceID:  interfaceID,
		InboundMbps:  mbps(prev.BytesReceived, current.BytesReceived, seconds),
		OutboundMbps: mbps(prev.BytesSent, current.BytesSent, seconds),
		ObservedAt:   now,
	}

	// The baseline moves forward even when a direction was clamped.
	s.state[interfaceID] = current
	return reading, nil
}

// Last returns the baseline sample kept for interfaceID.
func (s *RateSampler) Last(interfaceID string) (model.InterfaceCounterSample, bool) {
	sample, ok := s.state[interfaceID]
	return sample, ok
}

// Len returns the number of interfaces seen so far.
func (s *RateSampler) Len() int {
	return len(s.state)
}

// mbps clamps counter resets to zero instead of wrapping around.
func mbps(prev, current uint64, seconds float64) float64 {
	if current < prev {
		return 0.0
	}
	delta := float64(current - prev)
	return (delta * 8) / (seconds * bytesPerMegabit)
}
