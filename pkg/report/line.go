// Package report carries climate readings over a line oriented serial protocol.
//
// A line has the form
//
//	unix_micros,temperature,mcu_temperature,humidity,alarm,fan
//
// e.g. "1700000000123456,27.50,31.25,48.00,0,1". Temperatures and humidity use two
// decimals; an unavailable value is written as NaN. Alarm and fan are 0 or 1.
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/comfort/pkg/module"
)

// NumFields is the number of comma separated fields per line.
const NumFields = 6

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed report line")

// FormatLine renders r without the trailing newline.
func FormatLine(r module.Reading) string {
	var b strings.Builder
	b.Grow(64)
	b.WriteString(strconv.FormatInt(r.Timestamp.UnixMicro(), 10))
	b.WriteByte(',')
	b.WriteString(formatValue(r.Temperature))
	b.WriteByte(',')
	b.WriteString(formatValue(r.MCUTemperature))
	b.WriteByte(',')
	b.WriteString(formatValue(r.Humidity))
	b.WriteByte(',')
	b.WriteByte(flag(r.Alarm))
	b.WriteByte(',')
	b.WriteByte(flag(r.Fan))
	return b.String()
}

// ParseLine parses one line produced by FormatLine. Surrounding whitespace is ignored.
func ParseLine(line string) (module.Reading, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != NumFields {
		return module.Reading{}, fmt.Errorf("%w: expected %d comma-separated values, got %d", ErrMalformed, NumFields, len(parts))
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return module.Reading{}, fmt.Errorf("%w: invalid timestamp: %w", ErrMalformed, err)
	}

	var values [3]float32
	for i, name := range []string{"temperature", "mcu temperature", "humidity"} {
		v, err := strconv.ParseFloat(parts[i+1], 32)
		if err != nil {
			return module.Reading{}, fmt.Errorf("%w: invalid %s: %w", ErrMalformed, name, err)
		}
		values[i] = float32(v)
	}

	alarm, err := parseFlag(parts[4])
	if err != nil {
		return module.Reading{}, fmt.Errorf("%w: invalid alarm: %w", ErrMalformed, err)
	}
	fan, err := parseFlag(parts[5])
	if err != nil {
		return module.Reading{}, fmt.Errorf("%w: invalid fan: %w", ErrMalformed, err)
	}

	return module.Reading{
		Timestamp:      time.UnixMicro(micros),
		Temperature:    values[0],
		MCUTemperature: values[1],
		Humidity:       values[2],
		Alarm:          alarm,
		Fan:            fan,
	}, nil
}

func formatValue(v float32) string {
	if math32.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(float64(v), 'f', 2, 32)
}

func flag(b bool) byte {
	if b {
		return '1'
	}
	return '0'
}

func parseFlag(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("expected 0 or 1, got %q", s)
}
