package module

import (
	"sync/atomic"

	"github.com/itohio/comfort/pkg/hw"
	"github.com/itohio/comfort/pkg/task"
)

// SoundAlarm samples a loud-noise detector on the medium task and latches detections
// until the next climate report consumes them.
type SoundAlarm struct {
	detector hw.Pin

	latched    atomic.Bool
	detections atomic.Uint64
}

// NewSoundAlarm creates an alarm reading detector.
func NewSoundAlarm(detector hw.Pin) *SoundAlarm {
	return &SoundAlarm{detector: detector}
}

// Run implements task.Runner.
func (a *SoundAlarm) Run(kind task.Kind) {
	if kind != task.Medium {
		return
	}
	if a.detector.Get() {
		a.latched.Store(true)
		a.detections.Add(1)
	}
}

// Active reports whether a detection is latched.
func (a *SoundAlarm) Active() bool {
	return a.latched.Load()
}

// Clear returns the latched state and resets it.
func (a *SoundAlarm) Clear() bool {
	return a.latched.Swap(false)
}

// Detections returns the number of medium task samples that saw noise.
func (a *SoundAlarm) Detections() uint64 {
	return a.detections.Load()
}
