package api

import (
	"sort"
	"sync"
	"time"

	"network-ai-monitor/internal/model"

	"github.com/sirupsen/logrus"
)

// Storage keeps the live view of the monitor fed by tick snapshots.
type Storage struct {
	mu          sync.RWMutex
	latest      map[string]model.ClassifiedReading
	history     map[string][]model.ClassifiedReading
	alerts      []model.AlertEvent
	lastTick    model.TickSnapshot
	ticks       uint64
	historySize int
	maxAlerts   int
	logger      *logrus.Logger
	tickSubs    map[*TickSubscriber]bool
	tickSubsMu  sync.RWMutex
}

type TickSubscriber struct {
	ID      string
	Channel chan model.TickSnapshot
}

type InterfaceView struct {
	model.ClassifiedReading
	Profile model.ThresholdProfile `json:"profile"`
}

type Status struct {
	Ticks          uint64    `json:"ticks"`
	LastTick       time.Time `json:"last_tick"`
	LastError      string    `json:"last_error,omitempty"`
	Interfaces     int       `json:"interfaces"`
	AlertsRecorded int       `json:"alerts_recorded"`
	Subscribers    int       `json:"subscribers"`
}

func NewStorage(historySize, maxAlerts int, logger *logrus.Logger) *Storage {
	if historySize <= 0 {
		historySize = 20
	}
	if maxAlerts <= 0 {
		maxAlerts = 500
	}
	return &Storage{
		latest:      make(map[string]model.ClassifiedReading),
		history:     make(map[string][]model.ClassifiedReading),
		alerts:      make([]model.AlertEvent, 0),
		historySize: historySize,
		maxAlerts:   maxAlerts,
		logger:      logger,
		tickSubs:    make(map[*TickSubscriber]bool),
	}
}

// Observe implements pipeline.Observer
func (s *Storage) Observe(snapshot model.TickSnapshot) {
	s.mu.Lock()
	s.ticks++
	s.lastTick = snapshot
	for _, r := range snapshot.Readings {
		s.latest[r.InterfaceID] = r
		h := append(s.history[r.InterfaceID], r)
		// Keep only last historySize points
		if len(h) > s.historySize {
			h = h[len(h)-s.historySize:]
		}
		s.history[r.InterfaceID] = h
	}
	s.alerts = append(s.alerts, snapshot.Alerts...)
	if len(s.alerts) > s.maxAlerts {
		s.alerts = s.alerts[len(s.alerts)-s.maxAlerts:]
	}
	s.mu.Unlock()

	s.notifyTickSubscribers(snapshot)
}

func (s *Storage) GetInterfaces() []model.ClassifiedReading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.ClassifiedReading, 0, len(s.latest))
	for _, r := range s.latest {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].InterfaceID < result[j].InterfaceID })
	return result
}

func (s *Storage) GetInterface(id string) (model.ClassifiedReading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.latest[id]
	return r, ok
}

// GetHistory returns up to limit points, oldest first
func (s *Storage) GetHistory(id string, limit int) ([]model.ClassifiedReading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.history[id]
	if !ok {
		return nil, false
	}
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	result := make([]model.ClassifiedReading, len(h))
	copy(result, h)
	return result, true
}

// GetAlerts returns latest first, filtered by interface and class when set
func (s *Storage) GetAlerts(limit int, interfaceID, class string) []model.AlertEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.AlertEvent, 0)
	for i := len(s.alerts) - 1; i >= 0 && len(result) < limit; i-- {
		a := s.alerts[i]
		if interfaceID != "" && a.InterfaceID != interfaceID {
			continue
		}
		if class != "" && a.Class != class {
			continue
		}
		result = append(result, a)
	}
	return result
}

func (s *Storage) GetAlertByID(id string) *model.AlertEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.alerts {
		if s.alerts[i].ID == id {
			a := s.alerts[i]
			return &a
		}
	}
	return nil
}

func (s *Storage) GetStatus() Status {
	s.mu.RLock()
	st := Status{
		Ticks:          s.ticks,
		LastTick:       s.lastTick.Timestamp,
		LastError:      s.lastTick.Err,
		Interfaces:     len(s.latest),
		AlertsRecorded: len(s.alerts),
	}
	s.mu.RUnlock()

	s.tickSubsMu.RLock()
	st.Subscribers = len(s.tickSubs)
	s.tickSubsMu.RUnlock()
	return st
}

func (s *Storage) SubscribeTicks(sub *TickSubscriber) {
	s.tickSubsMu.Lock()
	defer s.tickSubsMu.Unlock()
	s.tickSubs[sub] = true
}

func (s *Storage) UnsubscribeTicks(sub *TickSubscriber) {
	s.tickSubsMu.Lock()
	defer s.tickSubsMu.Unlock()
	if _, ok := s.tickSubs[sub]; !ok {
		return
	}
	delete(s.tickSubs, sub)
	close(sub.Channel)
}

func (s *Storage) notifyTickSubscribers(snapshot model.TickSnapshot) {
	s.tickSubsMu.RLock()
	defer s.tickSubsMu.RUnlock()

	for sub := range s.tickSubs {
		select {
		case sub.Channel <- snapshot.Copy():
		default:
			// Channel full, skip
			s.logger.Debugf("[API] Tick subscriber %s is slow, dropping tick %d", sub.ID, snapshot.Tick)
		}
	}
}
