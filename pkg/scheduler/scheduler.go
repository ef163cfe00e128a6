// Package scheduler implements a fixed-priority, tick-driven cooperative task scheduler.
//
// Two roles share one Scheduler value:
//
//   - the tick producer calls Tick once per base interval. Tick advances a cascade of
//     period counters (fast, medium, slow, very-slow) and raises a pending flag for every
//     tier whose counter reached its threshold. Raising a flag that is still pending
//     counts a missed task for that tier instead.
//   - the dispatcher calls RunOnce from the main loop. RunOnce clears the first pending
//     flag in priority order and runs that tier's task. At most one tier runs per call,
//     so faster tiers always win.
//
// Counters and flags are guarded by a short critical section so the producer may run on
// its own goroutine. Task bodies always run outside of it.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/itohio/comfort/pkg/task"
)

// Recorder receives task execution timing, e.g. for CPU load estimation.
// Implementations must be safe for concurrent use and must not block.
type Recorder interface {
	Record(kind task.Kind, start time.Time, elapsed time.Duration)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRecorder attaches an instrumentation sink. Nil leaves instrumentation disabled.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) {
		s.recorder = r
	}
}

// WithNow overrides the time source used for instrumentation timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

type tierState struct {
	threshold uint32
	counter   uint32
	pending   bool
	missed    uint32
}

// Scheduler owns all tier counters, pending flags, missed-task counters and the
// enable gate. The zero state after New is disabled with everything cleared.
type Scheduler struct {
	registry *task.Registry
	recorder Recorder
	now      func() time.Time

	mu      sync.Mutex
	enabled bool
	tiers   [NumTiers]tierState
}

// New creates a scheduler dispatching into registry. The registry is sealed.
func New(th Thresholds, registry *task.Registry, opts ...Option) (*Scheduler, error) {
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	if registry == nil {
		registry = task.NewRegistry()
	}
	registry.Seal()

	s := &Scheduler{
		registry: registry,
		now:      time.Now,
	}
	for _, t := range Tiers() {
		s.tiers[t].threshold = th.Of(t)
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Thresholds returns the configured tier periods.
func (s *Scheduler) Thresholds() Thresholds {
	return Thresholds{
		Fast:     s.tiers[Fast].threshold,
		Medium:   s.tiers[Medium].threshold,
		Slow:     s.tiers[Slow].threshold,
		VerySlow: s.tiers[VerySlow].threshold,
	}
}

// Registry returns the sealed runner registry.
func (s *Scheduler) Registry() *task.Registry {
	return s.registry
}

// run executes every runner of kind and forwards timing to the recorder, if any.
func (s *Scheduler) run(kind task.Kind) {
	if s.recorder == nil {
		s.registry.Run(kind)
		return
	}
	start := s.now()
	s.registry.Run(kind)
	s.recorder.Record(kind, start, s.now().Sub(start))
}
