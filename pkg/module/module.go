// Package module contains the task bodies of the climate controller.
//
// Every module implements task.Runner and decides per call whether the task kind is
// relevant to it. Hardware is reached only through the hw interfaces.
package module

import (
	"errors"
	"time"

	"github.com/itohio/comfort/pkg/task"
)

// Ensure modules implement task.Runner.
var (
	_ task.Runner = (*Heartbeat)(nil)
	_ task.Runner = (*SoundAlarm)(nil)
	_ task.Runner = (*Thermostat)(nil)
	_ task.Runner = (*Watchdog)(nil)
)

// Reading is one climate report.
type Reading struct {
	Timestamp      time.Time
	Temperature    float32 // Room temperature (°C)
	MCUTemperature float32 // MCU die temperature (°C), NaN when unavailable
	Humidity       float32 // Relative humidity (%), NaN when unavailable
	Alarm          bool    // Loud noise detected since the previous report
	Fan            bool    // Fan state after this report
}

// Sink receives climate reports.
type Sink interface {
	Report(r Reading) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(r Reading) error

// Report calls f(r).
func (f SinkFunc) Report(r Reading) error { return f(r) }

// MultiSink fans a report out to every sink and joins their errors.
type MultiSink []Sink

// Report implements Sink.
func (m MultiSink) Report(r Reading) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Report(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
