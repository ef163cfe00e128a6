package scheduler

import (
	"errors"
	"fmt"

	"github.com/itohio/comfort/pkg/task"
)

// Tier is one of the periodic task classes, in priority order.
type Tier uint8

const (
	Fast Tier = iota
	Medium
	Slow
	VerySlow

	// NumTiers is the number of periodic tiers.
	NumTiers = int(VerySlow) + 1
)

// Tiers returns all tiers in priority order (highest first).
func Tiers() []Tier {
	return []Tier{Fast, Medium, Slow, VerySlow}
}

// Kind returns the task kind passed to runners of this tier.
func (t Tier) Kind() task.Kind {
	switch t {
	case Fast:
		return task.Fast
	case Medium:
		return task.Medium
	case Slow:
		return task.Slow
	case VerySlow:
		return task.VerySlow
	}
	return task.Kind(task.NumKinds)
}

// String returns the tier name.
func (t Tier) String() string {
	return t.Kind().String()
}

var (
	// ErrZeroThreshold is returned when a tier threshold is zero.
	ErrZeroThreshold = errors.New("threshold must be positive")
	// ErrThresholdOrder is returned when thresholds are not strictly increasing.
	ErrThresholdOrder = errors.New("thresholds must be strictly increasing")
)

// Thresholds are the tier periods in ticks.
// Fast < Medium < Slow < VerySlow must hold.
type Thresholds struct {
	Fast     uint32 `yaml:"fast"`
	Medium   uint32 `yaml:"medium"`
	Slow     uint32 `yaml:"slow"`
	VerySlow uint32 `yaml:"very_slow"`
}

// DefaultThresholds returns the reference periods for a 1ms tick.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Fast:     5,
		Medium:   10,
		Slow:     100,
		VerySlow: 1000,
	}
}

// Of returns the threshold of tier t.
func (th Thresholds) Of(t Tier) uint32 {
	return th.array()[t]
}

func (th Thresholds) array() [NumTiers]uint32 {
	return [NumTiers]uint32{th.Fast, th.Medium, th.Slow, th.VerySlow}
}

// Validate checks that every threshold is positive and that they are strictly increasing.
func (th Thresholds) Validate() error {
	values := th.array()
	for i, v := range values {
		if v == 0 {
			return fmt.Errorf("%s: %w", Tier(i), ErrZeroThreshold)
		}
		if i > 0 && v <= values[i-1] {
			return fmt.Errorf("%s (%d) <= %s (%d): %w", Tier(i), v, Tier(i-1), values[i-1], ErrThresholdOrder)
		}
	}
	return nil
}
