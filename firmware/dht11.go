//go:build tinygo

package main

import (
	"time"

	"machine"

	"github.com/itohio/comfort/pkg/hw"
)

// dht11 bit-bangs the single wire DHT11 protocol.
type dht11 struct {
	pin machine.Pin
}

// Read performs one blocking measurement (~25ms).
func (d dht11) Read() (float32, float32, error) {
	var data [5]byte

	// Start signal: hold the line low, then release it to the pull-up.
	d.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.pin.Low()
	time.Sleep(DHT_START_LOW)
	d.pin.High()
	d.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	// Sensor answers with 80µs low, 80µs high, then the first bit's low phase.
	if _, ok := d.wait(true); !ok {
		return 0, 0, hw.ErrSensorTimeout
	}
	if _, ok := d.wait(false); !ok {
		return 0, 0, hw.ErrSensorTimeout
	}
	if _, ok := d.wait(true); !ok {
		return 0, 0, hw.ErrSensorTimeout
	}

	for i := range 40 {
		if _, ok := d.wait(false); !ok {
			return 0, 0, hw.ErrSensorTimeout
		}
		high, ok := d.wait(true)
		if !ok {
			return 0, 0, hw.ErrSensorTimeout
		}
		data[i/8] <<= 1
		if high > DHT_ONE_THRESHOLD {
			data[i/8] |= 1
		}
	}

	if data[0]+data[1]+data[2]+data[3] != data[4] {
		return 0, 0, hw.ErrChecksum
	}

	humidity := float32(data[0]) + float32(data[1])/10
	temperature := float32(data[2]&0x7f) + float32(data[3])/10
	if data[2]&0x80 != 0 {
		temperature = -temperature
	}
	return temperature, humidity, nil
}

// wait blocks while the line is at level and returns how long it stayed there.
func (d dht11) wait(level bool) (time.Duration, bool) {
	start := time.Now()
	for d.pin.Get() == level {
		if time.Since(start) > DHT_BIT_TIMEOUT {
			return 0, false
		}
	}
	return time.Since(start), true
}

// mcuThermometer reads the die temperature sensor.
type mcuThermometer struct{}

func (mcuThermometer) Temperature() (float32, error) {
	return float32(machine.ReadTemperature()) / 1000, nil
}

// activeLow inverts a pin driving an active low load.
type activeLow struct {
	pin machine.Pin
}

func (p activeLow) Get() bool     { return !p.pin.Get() }
func (p activeLow) Set(high bool) { p.pin.Set(!high) }
