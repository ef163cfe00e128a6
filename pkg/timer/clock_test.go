package timer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNow struct {
	t time.Time
}

func (f *fakeNow) now() time.Time { return f.t }

func (f *fakeNow) advance(d time.Duration) { f.t = f.t.Add(d) }

func newFakeClock(period time.Duration, h TickHandler) (*Clock, *fakeNow) {
	fn := &fakeNow{t: time.Unix(1700000000, 0)}
	c := NewClock(period, h)
	c.now = fn.now
	c.start = fn.now()
	return c, fn
}

func TestNewClock_Defaults(t *testing.T) {
	c := NewClock(0, nil)
	assert.Equal(t, DefaultPeriod, c.Period())
	assert.Zero(t, c.SystemTime())

	// Ticking without a handler only keeps time.
	c.Tick()
	assert.Equal(t, uint64(1), c.SystemTime())
}

func TestClock_TickForwardsToHandler(t *testing.T) {
	var calls atomic.Int32
	c := NewClock(time.Millisecond, TickFunc(func() { calls.Add(1) }))

	for range 3 {
		c.Tick()
	}
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, uint64(3), c.SystemTime())
}

func TestClock_ElapsedTime(t *testing.T) {
	c := NewClock(time.Millisecond, nil)
	for range 10 {
		c.Tick()
	}

	tests := []struct {
		name string
		ref  uint64
		want uint64
	}{
		{name: "from zero", ref: 0, want: 10},
		{name: "from past", ref: 4, want: 6},
		{name: "now", ref: 10, want: 0},
		{name: "future", ref: 15, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ElapsedTime(tt.ref))
		})
	}
}

func TestClock_TimerExpired(t *testing.T) {
	c := NewClock(time.Millisecond, nil)
	for range 10 {
		c.Tick()
	}

	tests := []struct {
		name    string
		ref     uint64
		timeout uint64
		want    bool
	}{
		{name: "expired", ref: 2, timeout: 5, want: true},
		{name: "exactly", ref: 5, timeout: 5, want: true},
		{name: "not yet", ref: 8, timeout: 5, want: false},
		{name: "zero timeout same tick", ref: 10, timeout: 0, want: false},
		{name: "zero timeout past", ref: 9, timeout: 0, want: true},
		{name: "future ref", ref: 20, timeout: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.TimerExpired(tt.ref, tt.timeout))
		})
	}
}

func TestClock_HiResSystemTime(t *testing.T) {
	c, fn := newFakeClock(time.Millisecond, nil)

	// No tick yet.
	fn.advance(300 * time.Microsecond)
	assert.Equal(t, uint64(0), c.HiResSystemTime())

	fn.advance(700 * time.Microsecond)
	c.Tick()
	assert.Equal(t, uint64(1000), c.HiResSystemTime())

	fn.advance(250 * time.Microsecond)
	assert.Equal(t, uint64(1250), c.HiResSystemTime())

	// A late tick never reports more than one period of sub-tick time.
	fn.advance(5 * time.Millisecond)
	assert.Equal(t, uint64(1999), c.HiResSystemTime())

	fn.advance(time.Microsecond)
	c.Tick()
	assert.Equal(t, uint64(2000), c.HiResSystemTime())
}

func TestClock_HiResElapsedTime(t *testing.T) {
	c, fn := newFakeClock(time.Millisecond, nil)

	fn.advance(time.Millisecond)
	c.Tick()
	ref := c.HiResSystemTime()

	fn.advance(400 * time.Microsecond)
	assert.Equal(t, uint64(400), c.HiResElapsedTime(ref))

	fn.advance(600 * time.Microsecond)
	c.Tick()
	fn.advance(100 * time.Microsecond)
	assert.Equal(t, uint64(1100), c.HiResElapsedTime(ref))

	assert.Zero(t, c.HiResElapsedTime(ref+1_000_000))
}

func TestSource_TicksUntilCancelled(t *testing.T) {
	var calls atomic.Int64
	c := NewClock(time.Millisecond, TickFunc(func() { calls.Add(1) }))
	src := NewSource(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := src.Start(ctx)

	require.Eventually(t, func() bool {
		return calls.Load() >= 5
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("source did not stop after cancel")
	}

	stopped := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load(), "no ticks after shutdown")
	assert.Equal(t, uint64(stopped), c.SystemTime())
}

func TestSource_RunReturnsContextError(t *testing.T) {
	src := NewSource(NewClock(time.Millisecond, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := src.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
