package rules

import (
	"sort"
	"sync"

	"network-ai-monitor/internal/model"

	"github.com/sirupsen/logrus"
)

// Engine resolves the class of an interface and classifies its readings
// against the matching threshold profile.
type Engine struct {
	resolver *ClassResolver
	profiles map[string]model.ThresholdProfile
	logger   *logrus.Logger

	mu     sync.Mutex
	warned map[string]bool
}

func NewEngine(resolver *ClassResolver, profiles map[string]model.ThresholdProfile, logger *logrus.Logger) *Engine {
	copied := make(map[string]model.ThresholdProfile, len(profiles))
	for class, p := range profiles {
		copied[class] = p
	}
	return &Engine{
		resolver: resolver,
		profiles: copied,
		logger:   logger,
		warned:   make(map[string]bool),
	}
}

// ClassOf returns the logical class used both for thresholds and alert cooldowns.
func (e *Engine) ClassOf(interfaceID string) string {
	return e.resolver.Resolve(interfaceID)
}

// ProfileFor falls back to the default class profile when class has none.
func (e *Engine) ProfileFor(class string) model.ThresholdProfile {
	if p, ok := e.profiles[class]; ok {
		return p
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.warned[class] {
		e.warned[class] = true
		e.logger.Warnf("[Classifier] No thresholds for class %q, using %q", class, e.resolver.DefaultClass())
	}
	return e.profiles[e.resolver.DefaultClass()]
}

func (e *Engine) DefaultClass() string {
	return e.resolver.DefaultClass()
}

func (e *Engine) Evaluate(reading model.RateReading) model.ClassifiedReading {
	class := e.ClassOf(reading.InterfaceID)
	return model.ClassifiedReading{
		RateReading: reading,
		Class:       class,
		Verdict:     Classify(reading, e.ProfileFor(class)),
	}
}

// Profiles returns a copy of the configured thresholds keyed by class.
func (e *Engine) Profiles() map[string]model.ThresholdProfile {
	out := make(map[string]model.ThresholdProfile, len(e.profiles))
	for class, p := range e.profiles {
		out[class] = p
	}
	return out
}

// Classes lists the configured classes in a stable order.
func (e *Engine) Classes() []string {
	classes := make([]string, 0, len(e.profiles))
	for class := range e.profiles {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}
