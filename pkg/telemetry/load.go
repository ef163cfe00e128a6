// Package telemetry collects task execution timing for CPU load monitoring.
package telemetry

import (
	"sync"
	"time"

	"github.com/itohio/comfort/pkg/scheduler"
	"github.com/itohio/comfort/pkg/task"
)

var _ scheduler.Recorder = (*Load)(nil)

// Stat is the accumulated timing of one task kind.
type Stat struct {
	Kind      task.Kind
	Runs      uint64
	LastStart time.Time
	LastRun   time.Duration
	MaxRun    time.Duration
	TotalRun  time.Duration
}

// Average returns the mean run time.
func (s Stat) Average() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.TotalRun / time.Duration(s.Runs)
}

// Load records task run times per kind.
// It keeps no history beyond running totals.
type Load struct {
	mu    sync.RWMutex
	stats [task.NumKinds]Stat

	// Update callbacks receive the stat that just changed.
	callbacks []func(Stat)
	cbMu      sync.RWMutex
}

// New creates an empty load recorder.
func New() *Load {
	l := &Load{}
	l.reset()
	return l
}

// Record implements scheduler.Recorder.
func (l *Load) Record(kind task.Kind, start time.Time, elapsed time.Duration) {
	if !kind.Valid() {
		return
	}

	l.mu.Lock()
	s := &l.stats[kind]
	s.Runs++
	s.LastStart = start
	s.LastRun = elapsed
	s.TotalRun += elapsed
	if elapsed > s.MaxRun {
		s.MaxRun = elapsed
	}
	stat := *s
	l.mu.Unlock()

	l.notifyCallbacks(stat)
}

// Stat returns the accumulated timing of kind.
func (l *Load) Stat(kind task.Kind) Stat {
	if !kind.Valid() {
		return Stat{Kind: kind}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats[kind]
}

// Snapshot returns a copy of all stats ordered by kind.
func (l *Load) Snapshot() []Stat {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]Stat, len(l.stats))
	copy(result, l.stats[:])
	return result
}

// Busy returns the total time spent running tasks since the last Reset.
func (l *Load) Busy() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total time.Duration
	for _, s := range l.stats {
		total += s.TotalRun
	}
	return total
}

// Utilization returns the share of window spent running tasks, given the busy time
// measured at the start of the window.
func (l *Load) Utilization(busyBefore, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	u := float64(l.Busy()-busyBefore) / float64(window)
	if u < 0 {
		return 0
	}
	return u
}

// Reset clears all stats.
func (l *Load) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()
}

func (l *Load) reset() {
	for i := range l.stats {
		l.stats[i] = Stat{Kind: task.Kind(i)}
	}
}

// OnUpdate registers a callback invoked after every recorded run.
// Callbacks run on the dispatcher goroutine and must return quickly.
func (l *Load) OnUpdate(callback func(Stat)) {
	l.cbMu.Lock()
	defer l.cbMu.Unlock()
	l.callbacks = append(l.callbacks, callback)
}

func (l *Load) notifyCallbacks(stat Stat) {
	l.cbMu.RLock()
	callbacks := make([]func(Stat), len(l.callbacks))
	copy(callbacks, l.callbacks)
	l.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(stat)
		}
	}
}
