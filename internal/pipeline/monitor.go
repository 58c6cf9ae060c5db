package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"network-ai-monitor/internal/alert"
	"network-ai-monitor/internal/client"
	"network-ai-monitor/internal/model"
	"network-ai-monitor/internal/recorder"
	"network-ai-monitor/internal/rules"
	"network-ai-monitor/internal/sampler"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CounterSource lists the cumulative counters of every non-loopback interface
type CounterSource interface {
	ListInterfaces(ctx context.Context) (map[string]model.Counters, error)
}

// Observer receives a private copy of every tick result
type Observer interface {
	Observe(snapshot model.TickSnapshot)
}

type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "RUNNING"
	}
	return "IDLE"
}

// dispatchGrace is how long dispatch waits past the deadline for the notifier to return.
const dispatchGrace = 100 * time.Millisecond

type Config struct {
	Interval        time.Duration
	Cooldown        time.Duration
	DispatchTimeout time.Duration
	// WarmupTicks is the number of initial ticks during which idle readings are still recorded.
	WarmupTicks     uint64
	AlertingEnabled bool
}

// Monitor samples, classifies, records and alerts once per tick.
// Sampler and gate state are only touched from the tick goroutine.
type Monitor struct {
	cfg       Config
	source    CounterSource
	sampler   *sampler.RateSampler
	engine    *rules.Engine
	gate      *alert.Gate
	recorder  recorder.Recorder
	notifier  alert.Notifier
	metrics   *client.PrometheusMetrics
	observers []Observer
	logger    *logrus.Logger
	now       func() time.Time
	scheduler *Scheduler
	tick      uint64
	state     atomic.Int32
}

func NewMonitor(cfg Config, source CounterSource, engine *rules.Engine, rec recorder.Recorder, notifier alert.Notifier, logger *logrus.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 15 * time.Second
	}
	return &Monitor{
		cfg:       cfg,
		source:    source,
		sampler:   sampler.NewRateSampler(),
		engine:    engine,
		gate:      alert.NewGate(),
		recorder:  rec,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
		scheduler: NewScheduler(cfg.Interval),
	}
}

func (m *Monitor) SetMetrics(metrics *client.PrometheusMetrics) {
	m.metrics = metrics
}

func (m *Monitor) AddObserver(o Observer) {
	m.observers = append(m.observers, o)
}

// SetClock replaces the wall clock used to timestamp samples.
func (m *Monitor) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Monitor) State() State {
	return State(m.state.Load())
}

// Start ticks until ctx is cancelled or Stop is called. A tick that has begun
// always runs to completion.
func (m *Monitor) Start(ctx context.Context) {
	m.state.Store(int32(StateRunning))
	m.logger.Infof("[Monitor] Starting (interval: %v, cooldown: %v, warm-up ticks: %d)", m.cfg.Interval, m.cfg.Cooldown, m.cfg.WarmupTicks)

	m.scheduler.Run(ctx, func(ctx context.Context) {
		m.Tick(context.WithoutCancel(ctx))
	})

	m.state.Store(int32(StateIdle))
	m.logger.Info("[Monitor] Stopped")
}

func (m *Monitor) Stop() {
	m.scheduler.Stop()
}

// Tick runs one sampling pass over every interface and returns what it produced.
func (m *Monitor) Tick(ctx context.Context) model.TickSnapshot {
	started := time.Now()
	m.tick++
	now := m.now()
	snapshot := model.TickSnapshot{Tick: m.tick, Timestamp: now}

	counters, err := m.source.ListInterfaces(ctx)
	if err != nil {
		m.logger.Errorf("[Monitor] Tick %d aborted, cannot read interface counters: %v", m.tick, err)
		snapshot.Err = err.Error()
		m.finish(snapshot, started)
		return snapshot
	}

	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		reading, err := m.sampler.Sample(name, counters[name], now)
		if err != nil {
			if errors.Is(err, sampler.ErrNonPositiveInterval) {
				m.logger.Debugf("[Monitor] Skipping %s this tick: %v", name, err)
			} else {
				m.logger.Warnf("[Monitor] Skipping %s this tick: %v", name, err)
			}
			snapshot.Skipped = append(snapshot.Skipped, name)
			continue
		}

		if m.tick > m.cfg.WarmupTicks && reading.IsIdle() {
			if m.metrics != nil {
				m.metrics.IncSuppressedReading()
			}
			continue
		}

		cr := m.engine.Evaluate(reading)
		snapshot.Readings = append(snapshot.Readings, cr)

		if err := m.recorder.Append(ctx, model.NewRecord(cr)); err != nil {
			m.logger.Errorf("[Monitor] Failed to record reading for %s: %v", name, err)
			if m.metrics != nil {
				m.metrics.IncRecorderError()
			}
		}

		if cr.Verdict.IsAnomaly() {
			if ev, dispatched := m.maybeAlert(ctx, cr, now); dispatched {
				snapshot.Alerts = append(snapshot.Alerts, ev)
			}
		}
	}

	m.finish(snapshot, started)
	return snapshot
}

func (m *Monitor) maybeAlert(ctx context.Context, cr model.ClassifiedReading, now time.Time) (model.AlertEvent, bool) {
	if !m.cfg.AlertingEnabled || m.notifier == nil {
		return model.AlertEvent{}, false
	}
	if !m.gate.ShouldAlert(cr.Class, now, m.cfg.Cooldown) {
		m.logger.Debugf("[Monitor] %s on %s suppressed, class %s is cooling down", cr.Verdict, cr.InterfaceID, cr.Class)
		if m.metrics != nil {
			m.metrics.IncSuppressedAlert(cr.Class)
		}
		return model.AlertEvent{}, false
	}

	subject, body := alert.FormatMessage(cr)
	ev := model.AlertEvent{
		ID:           uuid.NewString(),
		Timestamp:    now,
		InterfaceID:  cr.InterfaceID,
		Class:        cr.Class,
		Verdict:      cr.Verdict,
		InboundMbps:  cr.InboundMbps,
		OutboundMbps: cr.OutboundMbps,
		Subject:      subject,
		Body:         body,
	}

	if err := m.dispatch(ctx, subject, body); err != nil {
		// No Record: the next anomaly of this class may alert again.
		m.logger.Errorf("[Monitor] Alert for %s (%s) not delivered: %v", cr.InterfaceID, cr.Class, err)
		ev.Error = err.Error()
		return ev, true
	}

	m.gate.Record(cr.Class, now)
	ev.Delivered = true
	m.logger.Warnf("[Monitor] %s on %s (%s): in=%s out=%s Mbps, notification sent",
		cr.Verdict, cr.InterfaceID, cr.Class, alert.FormatMbps(cr.InboundMbps), alert.FormatMbps(cr.OutboundMbps))
	return ev, true
}

// dispatch bounds the notifier call so a hung channel cannot stall the tick.
func (m *Monitor) dispatch(ctx context.Context, subject, body string) error {
	dctx, cancel := context.WithTimeout(ctx, m.cfg.DispatchTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("notifier panic: %v", r)
			}
		}()
		done <- m.notifier.Notify(dctx, subject, body)
	}()

	select {
	case err := <-done:
		return wrapDispatchErr(err)
	case <-dctx.Done():
	}

	// A notifier that honours ctx reports its partial outcome right after the
	// deadline; only one that ignores ctx is abandoned.
	select {
	case err := <-done:
		return wrapDispatchErr(err)
	case <-time.After(dispatchGrace):
		return fmt.Errorf("%w: notifier timed out after %v", model.ErrCollaboratorUnavailable, m.cfg.DispatchTimeout)
	}
}

func wrapDispatchErr(err error) error {
	if err == nil || errors.Is(err, model.ErrCollaboratorUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrCollaboratorUnavailable, err)
}

func (m *Monitor) finish(snapshot model.TickSnapshot, started time.Time) {
	if m.metrics != nil {
		m.metrics.ObserveTickDuration(time.Since(started))
		m.metrics.Observe(snapshot)
	}
	for _, o := range m.observers {
		o.Observe(snapshot.Copy())
	}
}
