package module

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/comfort/pkg/hw"
	"github.com/itohio/comfort/pkg/task"
)

// ThermostatSettings configures the climate report cadence and fan hysteresis.
type ThermostatSettings struct {
	ReportEvery int     // Very slow runs per report
	FanOnAbove  float32 // °C
	FanOffBelow float32 // °C
}

// DefaultThermostatSettings reports every 20 very slow runs with a 29..30 °C band.
func DefaultThermostatSettings() ThermostatSettings {
	return ThermostatSettings{
		ReportEvery: 20,
		FanOnAbove:  30,
		FanOffBelow: 29,
	}
}

// Thermostat reads the climate sensors on every ReportEvery-th very slow task, drives
// the fan with hysteresis and publishes a Reading.
// Sensor failures skip the cycle; the next cycle simply tries again.
type Thermostat struct {
	settings ThermostatSettings
	climate  hw.Climate
	mcu      hw.Thermometer // optional
	fan      hw.Pin
	alarm    *SoundAlarm // optional
	sink     Sink        // optional
	now      func() time.Time

	count int
	fanOn bool

	reports      atomic.Uint64
	sensorErrors atomic.Uint64
	sinkErrors   atomic.Uint64

	mu      sync.Mutex
	last    Reading
	lastErr error
}

// NewThermostat creates a thermostat. mcu, alarm and sink may be nil.
func NewThermostat(settings ThermostatSettings, climate hw.Climate, mcu hw.Thermometer, fan hw.Pin, alarm *SoundAlarm, sink Sink) *Thermostat {
	if settings.ReportEvery <= 0 {
		settings.ReportEvery = DefaultThermostatSettings().ReportEvery
	}
	return &Thermostat{
		settings: settings,
		climate:  climate,
		mcu:      mcu,
		fan:      fan,
		alarm:    alarm,
		sink:     sink,
		now:      time.Now,
	}
}

// Run implements task.Runner.
func (t *Thermostat) Run(kind task.Kind) {
	switch kind {
	case task.PowerOn:
		t.count = 0
		t.setFan(false)
	case task.VerySlow:
		t.count++
		if t.count < t.settings.ReportEvery {
			return
		}
		t.count = 0
		t.report()
	}
}

func (t *Thermostat) report() {
	temperature, humidity, err := t.climate.Read()
	if err != nil {
		t.sensorErrors.Add(1)
		t.setErr(err)
		return
	}

	mcuTemperature := math32.NaN()
	if t.mcu != nil {
		if v, err := t.mcu.Temperature(); err == nil {
			mcuTemperature = v
		} else {
			t.sensorErrors.Add(1)
			t.setErr(err)
		}
	}

	switch {
	case temperature > t.settings.FanOnAbove:
		t.setFan(true)
	case temperature < t.settings.FanOffBelow:
		t.setFan(false)
	}

	r := Reading{
		Timestamp:      t.now(),
		Temperature:    temperature,
		MCUTemperature: mcuTemperature,
		Humidity:       humidity,
		Alarm:          t.alarm != nil && t.alarm.Clear(),
		Fan:            t.fanOn,
	}

	t.reports.Add(1)
	t.mu.Lock()
	t.last = r
	t.mu.Unlock()

	if t.sink == nil {
		return
	}
	if err := t.sink.Report(r); err != nil {
		t.sinkErrors.Add(1)
		t.setErr(err)
	}
}

func (t *Thermostat) setFan(on bool) {
	t.fanOn = on
	t.fan.Set(on)
}

func (t *Thermostat) setErr(err error) {
	t.mu.Lock()
	t.lastErr = err
	t.mu.Unlock()
}

// Last returns the most recent reading and whether one was taken.
func (t *Thermostat) Last() (Reading, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, !t.last.Timestamp.IsZero()
}

// LastError returns the most recent sensor or sink error.
func (t *Thermostat) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// Stats returns the number of published reports, sensor errors and sink errors.
func (t *Thermostat) Stats() (reports, sensorErrors, sinkErrors uint64) {
	return t.reports.Load(), t.sensorErrors.Load(), t.sinkErrors.Load()
}
