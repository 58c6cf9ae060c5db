package pipeline

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs a function on a fixed period. The first run happens
// immediately; runs never overlap and a stop is honoured between runs.
type Scheduler struct {
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewScheduler(interval time.Duration) *Scheduler {
	return &Scheduler{
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled or Stop is called.
func (s *Scheduler) Run(ctx context.Context, fn func(ctx context.Context)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		default:
		}

		fn(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		}
	}
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}
