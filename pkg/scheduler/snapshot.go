package scheduler

// TierSnapshot is a point-in-time copy of one tier's state.
type TierSnapshot struct {
	Tier      Tier
	Threshold uint32
	Counter   uint32
	Pending   bool
	Missed    uint32
}

// Snapshot is a point-in-time copy of the scheduler state for diagnostics.
type Snapshot struct {
	Enabled bool
	Tiers   [NumTiers]TierSnapshot
}

// TotalMissed returns the sum of all missed-task counters.
func (s Snapshot) TotalMissed() uint64 {
	var total uint64
	for _, t := range s.Tiers {
		total += uint64(t.Missed)
	}
	return total
}

// Snapshot returns a consistent copy of all tier state.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Enabled: s.enabled}
	for i, t := range s.tiers {
		snap.Tiers[i] = TierSnapshot{
			Tier:      Tier(i),
			Threshold: t.threshold,
			Counter:   t.counter,
			Pending:   t.pending,
			Missed:    t.missed,
		}
	}
	return snap
}

// Missed returns the missed-task counter of tier t.
func (s *Scheduler) Missed(t Tier) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tiers[t].missed
}

// Pending reports whether tier t is waiting to be dispatched.
func (s *Scheduler) Pending(t Tier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tiers[t].pending
}
