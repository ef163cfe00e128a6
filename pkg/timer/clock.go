// Package timer provides the system time base: a tick counter advanced by a periodic
// source, interval helpers built on it, and the bridge that forwards every tick to the
// scheduler's cascade.
package timer

import (
	"sync/atomic"
	"time"
)

// DefaultPeriod is the base tick interval.
const DefaultPeriod = time.Millisecond

// TickHandler is called once per tick, on the tick producer's goroutine.
// It must not block.
type TickHandler interface {
	Tick()
}

// TickFunc adapts a function to TickHandler.
type TickFunc func()

// Tick calls f.
func (f TickFunc) Tick() { f() }

// Clock counts ticks since power on.
// System time is expressed in ticks; high resolution time in microseconds.
type Clock struct {
	period  time.Duration
	handler TickHandler
	now     func() time.Time

	ticks    atomic.Uint64
	lastTick atomic.Int64 // monotonic offset of the last tick, ns since start
	start    time.Time
}

// NewClock creates a clock with the given tick period forwarding ticks to handler.
// A nil handler only keeps time.
func NewClock(period time.Duration, handler TickHandler) *Clock {
	if period <= 0 {
		period = DefaultPeriod
	}
	c := &Clock{
		period:  period,
		handler: handler,
		now:     time.Now,
	}
	c.start = c.now()
	return c
}

// Period returns the tick period.
func (c *Clock) Period() time.Duration {
	return c.period
}

// Tick advances system time by one tick and then runs the tick handler.
func (c *Clock) Tick() {
	c.ticks.Add(1)
	c.lastTick.Store(int64(c.now().Sub(c.start)))
	if c.handler != nil {
		c.handler.Tick()
	}
}

// SystemTime returns the number of ticks since the clock was created.
func (c *Clock) SystemTime() uint64 {
	return c.ticks.Load()
}

// ElapsedTime returns the ticks elapsed since ref, or 0 if ref is not in the past.
func (c *Clock) ElapsedTime(ref uint64) uint64 {
	now := c.SystemTime()
	if now > ref {
		return now - ref
	}
	return 0
}

// TimerExpired reports whether at least timeout ticks elapsed since ref.
// It is false while system time has not moved past ref.
func (c *Clock) TimerExpired(ref, timeout uint64) bool {
	now := c.SystemTime()
	if now <= ref {
		return false
	}
	return now-ref >= timeout
}

// HiResSystemTime returns microseconds since start: the tick count scaled by the period
// plus the time spent in the current tick, capped below one period.
func (c *Clock) HiResSystemTime() uint64 {
	ticks := c.ticks.Load()
	last := c.lastTick.Load()

	var sub time.Duration
	if ticks > 0 {
		sub = max(time.Duration(int64(c.now().Sub(c.start))-last), 0)
		sub = min(sub, max(c.period-time.Microsecond, 0))
	}

	base := time.Duration(ticks) * c.period
	return uint64((base + sub) / time.Microsecond)
}

// HiResElapsedTime returns microseconds elapsed since a HiResSystemTime reference.
func (c *Clock) HiResElapsedTime(ref uint64) uint64 {
	now := c.HiResSystemTime()
	if now > ref {
		return now - ref
	}
	return 0
}
