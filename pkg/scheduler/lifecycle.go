package scheduler

import "github.com/itohio/comfort/pkg/task"

// EnableSystemTasks clears every pending flag, tier counter and missed-task counter and
// opens the tick gate. It does nothing while already enabled.
func (s *Scheduler) EnableSystemTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enabled {
		return
	}
	for i := range s.tiers {
		s.tiers[i].pending = false
		s.tiers[i].counter = 0
		s.tiers[i].missed = 0
	}
	s.enabled = true
}

// DisableSystemTasks closes the tick gate. Counters and flags are left as they are;
// flags already raised are still served by RunOnce.
func (s *Scheduler) DisableSystemTasks() {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
}

// Enabled reports whether ticks currently advance the cascade.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// TriggerPowerOnTask runs the power-on runners synchronously, bypassing the cascade,
// the dispatcher and the enable gate. Call it once, before steady-state dispatching.
func (s *Scheduler) TriggerPowerOnTask() {
	s.run(task.PowerOn)
}
