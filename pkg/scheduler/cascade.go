package scheduler

// Tick advances the tier counters by one base tick.
//
// When a counter reaches its threshold the tier flag is raised, the consumed count is
// forwarded into the next tier's counter and the counter restarts from zero. Slower
// tiers therefore accumulate in tick units even when thresholds are not multiples of
// each other. Tick is a no-op while the scheduler is disabled.
//
// Tick runs on the tick producer's context and never blocks beyond the critical section.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return
	}

	s.tiers[Fast].counter++

	var carry uint32
	for i := range s.tiers {
		t := &s.tiers[i]
		t.counter += carry
		if t.counter < t.threshold {
			return
		}
		t.raise()
		carry = t.counter
		t.counter = 0
	}
}

// raise sets the pending flag, or counts a missed task if it is still set.
func (t *tierState) raise() {
	if t.pending {
		t.missed++
		return
	}
	t.pending = true
}
