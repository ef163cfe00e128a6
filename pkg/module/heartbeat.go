package module

import (
	"github.com/itohio/comfort/pkg/hw"
	"github.com/itohio/comfort/pkg/task"
)

// Heartbeat toggles a status LED on the fast and very slow tasks.
type Heartbeat struct {
	led hw.Pin
}

// NewHeartbeat creates a heartbeat driving led.
func NewHeartbeat(led hw.Pin) *Heartbeat {
	return &Heartbeat{led: led}
}

// Run implements task.Runner.
func (h *Heartbeat) Run(kind task.Kind) {
	switch kind {
	case task.Fast, task.VerySlow:
		h.led.Set(!h.led.Get())
	}
}
