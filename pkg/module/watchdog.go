package module

import (
	"sync/atomic"

	"github.com/itohio/comfort/pkg/task"
)

// Service manager notification states.
const (
	NotifyReady    = "READY=1"
	NotifyWatchdog = "WATCHDOG=1"
)

// Notifier delivers a state notification to the supervisor.
type Notifier interface {
	Notify(state string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(state string) error

// Notify calls f(state).
func (f NotifierFunc) Notify(state string) error { return f(state) }

// Watchdog reports readiness on power on and keeps the supervisor watchdog alive from
// the very slow task. A stalled dispatcher therefore stops the keep-alives.
type Watchdog struct {
	notifier Notifier

	kicks  atomic.Uint64
	errors atomic.Uint64
}

// NewWatchdog creates a watchdog module.
func NewWatchdog(notifier Notifier) *Watchdog {
	return &Watchdog{notifier: notifier}
}

// Run implements task.Runner.
func (w *Watchdog) Run(kind task.Kind) {
	var state string
	switch kind {
	case task.PowerOn:
		state = NotifyReady
	case task.VerySlow:
		state = NotifyWatchdog
	default:
		return
	}

	if err := w.notifier.Notify(state); err != nil {
		w.errors.Add(1)
		return
	}
	if kind == task.VerySlow {
		w.kicks.Add(1)
	}
}

// Kicks returns the number of delivered keep-alives.
func (w *Watchdog) Kicks() uint64 {
	return w.kicks.Load()
}

// Errors returns the number of failed notifications.
func (w *Watchdog) Errors() uint64 {
	return w.errors.Load()
}
