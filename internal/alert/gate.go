package alert

import (
	"time"
)

// Gate enforces a cooldown window per logical source key (the interface class).
// It never sends anything itself. Not safe for concurrent use; the monitor loop owns it.
type Gate struct {
	lastSent map[string]time.Time
}

func NewGate() *Gate {
	return &Gate{
		lastSent: make(map[string]time.Time),
	}
}

// ShouldAlert is true when key has never alerted or the last alert is strictly
// older than cooldown.
func (g *Gate) ShouldAlert(key string, now time.Time, cooldown time.Duration) bool {
	last, ok := g.lastSent[key]
	if !ok {
		return true
	}
	return now.Sub(last) > cooldown
}

// Record starts a new cooldown window. Call it only after a completed dispatch.
func (g *Gate) Record(key string, now time.Time) {
	g.lastSent[key] = now
}

// LastSent returns when key last alerted.
func (g *Gate) LastSent(key string) (time.Time, bool) {
	t, ok := g.lastSent[key]
	return t, ok
}
