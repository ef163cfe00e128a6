// Package diag watches the scheduler for missed tasks and logs periodic load summaries.
package diag

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/itohio/comfort/pkg/scheduler"
	"github.com/itohio/comfort/pkg/telemetry"
)

var (
	// ErrRunning is returned by Start on a started monitor.
	ErrRunning = errors.New("monitor already running")
	// ErrSchedule wraps an unparsable schedule.
	ErrSchedule = errors.New("invalid schedule")
)

// Source provides scheduler state.
type Source interface {
	Snapshot() scheduler.Snapshot
}

// Growth is the increase of one tier's missed counter between two checks.
type Growth struct {
	Tier   scheduler.Tier
	Missed uint32 // Counter value at this check
	Delta  uint32 // Increase since the previous check
}

// Summary is one periodic report.
type Summary struct {
	Enabled     bool
	Missed      [scheduler.NumTiers]uint32
	TotalMissed uint64
	Window      time.Duration
	Utilization float64 // Share of Window spent running tasks
	Stats       []telemetry.Stat
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithWarnRate limits missed-task warnings to perSecond with an equal burst.
// Zero or less disables the limit.
func WithWarnRate(perSecond int) Option {
	return func(m *Monitor) {
		if perSecond <= 0 {
			m.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		m.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

// WithNow sets the clock used for utilization windows.
func WithNow(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// Monitor compares successive scheduler snapshots.
type Monitor struct {
	src     Source
	load    *telemetry.Load // optional
	log     zerolog.Logger
	limiter *rate.Limiter
	now     func() time.Time
	parser  cron.Parser

	mu         sync.Mutex
	lastMissed [scheduler.NumTiers]uint32
	lastBusy   time.Duration
	lastReport time.Time
	suppressed uint64

	cronMu sync.Mutex
	c      *cron.Cron
}

// New creates a monitor. load may be nil.
func New(src Source, load *telemetry.Load, log zerolog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		src:     src,
		load:    load,
		log:     log,
		limiter: rate.NewLimiter(1, 1),
		now:     time.Now,
		parser:  cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.lastReport = m.now()
	if load != nil {
		m.lastBusy = load.Busy()
	}
	return m
}

// Check logs a warning for every tier whose missed counter grew since the last check
// and returns those tiers. A counter below its previous value was reset by
// EnableSystemTasks and only its new count is reported. Warnings beyond the rate limit
// are counted, not logged.
func (m *Monitor) Check() []Growth {
	snap := m.src.Snapshot()

	m.mu.Lock()
	var grown []Growth
	for i, t := range snap.Tiers {
		delta := t.Missed - m.lastMissed[i]
		if t.Missed < m.lastMissed[i] {
			// Counters went back: the scheduler was re-enabled and started from zero.
			delta = t.Missed
		}
		if delta > 0 {
			grown = append(grown, Growth{Tier: t.Tier, Missed: t.Missed, Delta: delta})
		}
		m.lastMissed[i] = t.Missed
	}
	m.mu.Unlock()

	for _, g := range grown {
		if !m.limiter.Allow() {
			m.mu.Lock()
			m.suppressed++
			m.mu.Unlock()
			continue
		}
		m.log.Warn().
			Str("tier", g.Tier.String()).
			Uint32("missed", g.Missed).
			Uint32("delta", g.Delta).
			Msg("Tier starving, tasks missed")
	}
	return grown
}

// Suppressed returns the number of warnings dropped by the rate limit.
func (m *Monitor) Suppressed() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suppressed
}

// Report logs and returns a summary covering the time since the previous report.
func (m *Monitor) Report() Summary {
	snap := m.src.Snapshot()
	now := m.now()

	m.mu.Lock()
	window := now.Sub(m.lastReport)
	m.lastReport = now
	busyBefore := m.lastBusy
	m.mu.Unlock()

	s := Summary{
		Enabled:     snap.Enabled,
		TotalMissed: snap.TotalMissed(),
		Window:      window,
	}
	for i, t := range snap.Tiers {
		s.Missed[i] = t.Missed
	}

	if m.load != nil {
		s.Utilization = m.load.Utilization(busyBefore, window)
		s.Stats = m.load.Snapshot()
		m.mu.Lock()
		m.lastBusy = m.load.Busy()
		m.mu.Unlock()
	}

	ev := m.log.Info().
		Bool("enabled", s.Enabled).
		Uint64("missed", s.TotalMissed).
		Dur("window", s.Window).
		Float64("utilization", s.Utilization)
	for _, st := range s.Stats {
		if st.Runs == 0 {
			continue
		}
		ev = ev.Dict(st.Kind.String(), zerolog.Dict().
			Uint64("runs", st.Runs).
			Dur("avg", st.Average()).
			Dur("max", st.MaxRun))
	}
	ev.Msg("Scheduler summary")

	return s
}

// Start runs Check and Report on the cron schedule, e.g. "@every 10s" or "*/30 * * * * *".
func (m *Monitor) Start(spec string) error {
	sched, err := m.parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrSchedule, spec, err)
	}

	m.cronMu.Lock()
	defer m.cronMu.Unlock()
	if m.c != nil {
		return ErrRunning
	}

	m.c = cron.New(cron.WithParser(m.parser))
	m.c.Schedule(sched, cron.FuncJob(func() {
		m.Check()
		m.Report()
	}))
	m.c.Start()

	m.log.Debug().Str("schedule", spec).Msg("Diagnostics started")
	return nil
}

// Stop stops the schedule and waits for a running report to finish.
func (m *Monitor) Stop() {
	m.cronMu.Lock()
	c := m.c
	m.c = nil
	m.cronMu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	m.log.Debug().Msg("Diagnostics stopped")
}
