// Package config holds the hot-reloadable motion tuning parameters and the
// shared store the synthesis loop reads them from.
package config

import (
	"strconv"
	"strings"
	"sync"
)

// Axis selects which synthetic accelerometer axis carries gravity.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "z"
	}
}

// Tunables is a complete set of motion tuning parameters. It is always fully
// formed: a value built by Parse starts from Defaults and only overrides keys
// present in the input.
type Tunables struct {
	// Sensitivity scales raw pointer deltas into angular rate.
	Sensitivity float64
	// InvertX and InvertY are sign multipliers, exactly +1 or -1.
	InvertX float64
	InvertY float64
	// GravityAxis carries GravityAmount; the other two axes stay at 0.
	GravityAxis   Axis
	GravityAmount float64
}

// Defaults returns the built-in tuning. Y-axis gravity matches a controller
// held upright, pointer style.
func Defaults() Tunables {
	return Tunables{
		Sensitivity:   5.0,
		InvertX:       -1.0,
		InvertY:       1.0,
		GravityAxis:   AxisY,
		GravityAmount: 9.81,
	}
}

// Parse builds a Tunables from key=value lines. The result is seeded from
// Defaults; only keys present in the input override it. A value that fails to
// parse as a float counts as 0.0 for that key. Unknown keys and lines without
// an '=' are ignored.
func Parse(contents string) Tunables {
	t := Defaults()
	for _, line := range strings.Split(contents, "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			val = 0.0
		}
		switch key {
		case "sensitivity":
			t.Sensitivity = val
		case "invert_x":
			t.InvertX = sign(val)
		case "invert_y":
			t.InvertY = sign(val)
		case "gravity_axis":
			t.GravityAxis = axisFrom(val)
		case "gravity_amount":
			t.GravityAmount = val
		}
	}
	return t
}

func sign(v float64) float64 {
	if v > 0.0 {
		return 1.0
	}
	return -1.0
}

// axisFrom truncates v to an integer and picks the axis. Anything other than
// 0 or 1 falls through to Z.
func axisFrom(v float64) Axis {
	switch int(v) {
	case 0:
		return AxisX
	case 1:
		return AxisY
	default:
		return AxisZ
	}
}

// Store is a mutex-guarded cell holding the current Tunables. The reloader
// replaces its contents wholesale; the synthesis loop snapshots it once per
// iteration. A snapshot never observes a partially written value.
type Store struct {
	mu  sync.Mutex
	cur Tunables
}

// NewStore returns a Store seeded with Defaults.
func NewStore() *Store {
	return &Store{cur: Defaults()}
}

// Replace overwrites the stored tunables.
func (s *Store) Replace(t Tunables) {
	s.mu.Lock()
	s.cur = t
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the stored tunables.
func (s *Store) Snapshot() Tunables {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}
