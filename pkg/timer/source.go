package timer

import (
	"context"
	"time"
)

// Source produces ticks from a wall-clock ticker, standing in for the hardware timer
// interrupt. Ticks that the ticker drops under load are lost, as a slow interrupt
// handler would lose them.
type Source struct {
	clock  *Clock
	period time.Duration
}

// NewSource creates a source ticking clock at the clock's period.
func NewSource(clock *Clock) *Source {
	return &Source{
		clock:  clock,
		period: clock.Period(),
	}
}

// Run ticks the clock until ctx is cancelled.
func (s *Source) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.clock.Tick()
		}
	}
}

// Start runs the source on its own goroutine. The returned channel is closed once
// the goroutine has exited.
func (s *Source) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	return done
}
