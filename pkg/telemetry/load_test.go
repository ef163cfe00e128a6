package telemetry

import (
	"testing"
	"time"

	"github.com/itohio/comfort/pkg/scheduler"
	"github.com/itohio/comfort/pkg/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Record(t *testing.T) {
	l := New()
	start := time.Unix(1700000000, 0)

	l.Record(task.Fast, start, 2*time.Millisecond)
	l.Record(task.Fast, start.Add(5*time.Millisecond), 4*time.Millisecond)
	l.Record(task.Slow, start, time.Millisecond)

	fast := l.Stat(task.Fast)
	assert.Equal(t, task.Fast, fast.Kind)
	assert.Equal(t, uint64(2), fast.Runs)
	assert.Equal(t, start.Add(5*time.Millisecond), fast.LastStart)
	assert.Equal(t, 4*time.Millisecond, fast.LastRun)
	assert.Equal(t, 4*time.Millisecond, fast.MaxRun)
	assert.Equal(t, 6*time.Millisecond, fast.TotalRun)
	assert.Equal(t, 3*time.Millisecond, fast.Average())

	assert.Equal(t, uint64(1), l.Stat(task.Slow).Runs)
	assert.Zero(t, l.Stat(task.Medium).Runs)
	assert.Zero(t, l.Stat(task.Medium).Average())
	assert.Equal(t, 7*time.Millisecond, l.Busy())
}

func TestLoad_InvalidKind(t *testing.T) {
	l := New()
	l.Record(task.Kind(77), time.Now(), time.Second)

	assert.Zero(t, l.Busy())
	assert.Equal(t, task.Kind(77), l.Stat(task.Kind(77)).Kind)
}

func TestLoad_SnapshotIsCopy(t *testing.T) {
	l := New()
	l.Record(task.Medium, time.Now(), time.Millisecond)

	snap := l.Snapshot()
	require.Len(t, snap, task.NumKinds)
	for i, s := range snap {
		assert.Equal(t, task.Kind(i), s.Kind)
	}

	snap[task.Medium].Runs = 100
	assert.Equal(t, uint64(1), l.Stat(task.Medium).Runs)
}

func TestLoad_UtilizationAndReset(t *testing.T) {
	l := New()
	before := l.Busy()

	l.Record(task.Fast, time.Now(), 25*time.Millisecond)
	l.Record(task.VerySlow, time.Now(), 25*time.Millisecond)

	assert.InDelta(t, 0.5, l.Utilization(before, 100*time.Millisecond), 1e-9)
	assert.Zero(t, l.Utilization(before, 0))

	l.Reset()
	assert.Zero(t, l.Busy())
	assert.Zero(t, l.Utilization(time.Second, time.Second))
	assert.Equal(t, task.VerySlow, l.Stat(task.VerySlow).Kind)
}

func TestLoad_OnUpdate(t *testing.T) {
	l := New()

	var got []Stat
	l.OnUpdate(func(s Stat) { got = append(got, s) })
	l.OnUpdate(nil)

	l.Record(task.PowerOn, time.Now(), time.Millisecond)
	require.Len(t, got, 1)
	assert.Equal(t, task.PowerOn, got[0].Kind)
	assert.Equal(t, uint64(1), got[0].Runs)
}

func TestLoad_AsSchedulerRecorder(t *testing.T) {
	l := New()
	reg := task.NewRegistry()
	require.NoError(t, reg.Register("noop", task.RunnerFunc(func(task.Kind) {})))

	s, err := scheduler.New(scheduler.DefaultThresholds(), reg, scheduler.WithRecorder(l))
	require.NoError(t, err)

	s.TriggerPowerOnTask()
	s.EnableSystemTasks()
	for range 100 {
		s.Tick()
		for s.RunOnce() {
		}
	}

	assert.Equal(t, uint64(1), l.Stat(task.PowerOn).Runs)
	assert.Equal(t, uint64(20), l.Stat(task.Fast).Runs)
	assert.Equal(t, uint64(10), l.Stat(task.Medium).Runs)
	assert.Equal(t, uint64(1), l.Stat(task.Slow).Runs)
	assert.Zero(t, l.Stat(task.VerySlow).Runs)
}
