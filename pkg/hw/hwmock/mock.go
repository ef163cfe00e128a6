// Package hwmock simulates the climate controller hardware for development and tests.
package hwmock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/comfort/pkg/config"
	"github.com/itohio/comfort/pkg/hw"
)

// Ensure mocks implement the hardware interfaces.
var (
	_ hw.Pin         = (*Pin)(nil)
	_ hw.Pin         = (*SoundPin)(nil)
	_ hw.Climate     = (*Climate)(nil)
	_ hw.Thermometer = (*Thermometer)(nil)
)

// Pin is an in-memory digital line.
type Pin struct {
	state   atomic.Bool
	changes atomic.Uint64
}

// NewPin creates a pin with the given initial level.
func NewPin(high bool) *Pin {
	p := &Pin{}
	p.state.Store(high)
	return p
}

// Get returns the current level.
func (p *Pin) Get() bool {
	return p.state.Load()
}

// Set drives the pin.
func (p *Pin) Set(high bool) {
	if p.state.Swap(high) != high {
		p.changes.Add(1)
	}
}

// Changes returns how many times Set changed the level.
func (p *Pin) Changes() uint64 {
	return p.changes.Load()
}

// SoundPin is a loud-noise detector input that goes high once every N reads.
type SoundPin struct {
	every uint64
	reads atomic.Uint64
}

// NewSoundPin creates a detector firing once per every reads; 0 never fires.
func NewSoundPin(every int) *SoundPin {
	if every < 0 {
		every = 0
	}
	return &SoundPin{every: uint64(every)}
}

// Get samples the detector.
func (p *SoundPin) Get() bool {
	n := p.reads.Add(1)
	return p.every > 0 && n%p.every == 0
}

// Set is ignored; the detector is an input.
func (p *SoundPin) Set(bool) {}

// Climate simulates a room whose temperature follows a first order lag towards
// ambient plus heat gain, pulled down while the fan pin is high.
type Climate struct {
	cfg *config.MockConfig
	fan hw.Pin
	now func() time.Time

	mu          sync.Mutex
	temperature float32
	humidity    float32
	last        time.Time
	reads       int
}

// NewClimate creates a simulated climate sensor. fan may be nil.
func NewClimate(cfg *config.MockConfig, fan hw.Pin) *Climate {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	c := &Climate{
		cfg: cfg,
		fan: fan,
		now: time.Now,
	}
	c.temperature = float32(cfg.Ambient + cfg.HeatGain)
	c.humidity = float32(cfg.Humidity)
	c.last = c.now()
	return c
}

// Read returns the current temperature (°C) and relative humidity (%).
// Every FailEvery-th read fails, alternating timeout and checksum errors.
func (c *Climate) Read() (float32, float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reads++
	c.step()

	if every := c.cfg.FailEvery; every > 0 && c.reads%every == 0 {
		if (c.reads/every)%2 == 1 {
			return 0, 0, hw.ErrSensorTimeout
		}
		return 0, 0, hw.ErrChecksum
	}

	noise := (math32.Sin(float32(c.reads)*0.7) + math32.Cos(float32(c.reads)*1.3)) *
		float32(c.cfg.NoiseLevel) * 0.5
	humidity := c.humidity + math32.Sin(float32(c.reads)*0.05)*2

	return c.temperature + noise, clamp(humidity, 0, 100), nil
}

// Temperature returns the noiseless simulated room temperature.
func (c *Climate) Temperature() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.temperature
}

// step advances the thermal model to now.
func (c *Climate) step() {
	now := c.now()
	dt := float32(now.Sub(c.last).Seconds())
	c.last = now
	if dt <= 0 {
		return
	}

	target := float32(c.cfg.Ambient + c.cfg.HeatGain)
	if c.fan != nil && c.fan.Get() {
		target -= float32(c.cfg.FanCooling)
	}

	tau := float32(c.cfg.TimeConstant.Seconds())
	alpha := float32(1)
	if tau > 0 {
		alpha = clamp(dt/tau, 0, 1)
	}
	c.temperature += alpha * (target - c.temperature)
}

// Thermometer simulates the MCU die sensor: the room temperature plus self heating.
type Thermometer struct {
	room   *Climate
	offset float32
}

// NewThermometer creates an MCU thermometer tracking room.
func NewThermometer(room *Climate, offset float64) *Thermometer {
	return &Thermometer{room: room, offset: float32(offset)}
}

// Temperature returns the simulated die temperature.
func (t *Thermometer) Temperature() (float32, error) {
	return t.room.Temperature() + t.offset, nil
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
