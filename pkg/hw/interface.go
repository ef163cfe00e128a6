// Package hw defines the hardware seen by task modules and simulated stand-ins for it.
package hw

import "errors"

var (
	// ErrSensorTimeout is returned when a sensor does not answer in time.
	ErrSensorTimeout = errors.New("sensor timeout")
	// ErrChecksum is returned when a sensor frame fails its checksum.
	ErrChecksum = errors.New("sensor checksum mismatch")
)

// Pin is a digital I/O line.
type Pin interface {
	Get() bool
	Set(high bool)
}

// Climate is an ambient temperature and humidity sensor (DHT11 class).
type Climate interface {
	Read() (temperature, humidity float32, err error)
}

// Thermometer is a single temperature source, e.g. the MCU die sensor.
type Thermometer interface {
	Temperature() (float32, error)
}
