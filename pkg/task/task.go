// Package task defines the task kinds passed to module runners and the registry that
// routes each kind to its runners.
package task

// Kind identifies the event or periodic tier that triggered a task run.
// Every module runner receives it and decides on its own whether to act.
type Kind uint8

const (
	PowerOn Kind = iota
	Fast
	Medium
	Slow
	VerySlow
	PowerOff

	// NumKinds is the number of defined kinds.
	NumKinds = int(PowerOff) + 1
)

var kindNames = [NumKinds]string{
	PowerOn:  "power-on",
	Fast:     "fast",
	Medium:   "medium",
	Slow:     "slow",
	VerySlow: "very-slow",
	PowerOff: "power-off",
}

// String returns the kind name.
func (k Kind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return int(k) < NumKinds
}

// Kinds returns all defined kinds in declaration order.
func Kinds() []Kind {
	return []Kind{PowerOn, Fast, Medium, Slow, VerySlow, PowerOff}
}

// Runner is a module task body.
// Run must be a no-op for kinds the module is not interested in and must not block
// for longer than the period of the tier it is registered on.
type Runner interface {
	Run(kind Kind)
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(kind Kind)

// Run calls f(kind).
func (f RunnerFunc) Run(kind Kind) {
	f(kind)
}
