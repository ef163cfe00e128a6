package scheduler

import (
	"context"
	"runtime"
	"time"
)

// RunOnce runs the task of the highest priority pending tier and reports whether one ran.
//
// The flag is cleared before the task runs, so a re-trigger during the task is kept
// as a fresh pending flag. Lower priority tiers wait for a later call even when
// pending. Power-off is reserved and never polled.
func (s *Scheduler) RunOnce() bool {
	tier, ok := s.take()
	if !ok {
		return false
	}
	s.run(tier.Kind())
	return true
}

// take clears and returns the first pending tier.
func (s *Scheduler) take() (Tier, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tiers {
		if s.tiers[i].pending {
			s.tiers[i].pending = false
			return Tier(i), true
		}
	}
	return 0, false
}

// Run is the outer dispatch loop. It calls RunOnce until ctx is cancelled and waits
// idle between polls that found nothing to do (idle <= 0 only yields the processor).
func (s *Scheduler) Run(ctx context.Context, idle time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if s.RunOnce() {
			continue
		}

		if idle <= 0 {
			runtime.Gosched()
			continue
		}

		timer := time.NewTimer(idle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
