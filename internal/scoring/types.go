package scoring

import (
	"fmt"
	"strings"
)

// ScoringMode selects the motor-speed profile and flap behavior.
type ScoringMode int

const (
	ModeNone ScoringMode = iota
	ModeCollection
	ModeMidGoal
	ModeLowGoal
	ModeTopGoal
)

// Modes lists the selectable modes in button order.
var Modes = []ScoringMode{ModeCollection, ModeMidGoal, ModeLowGoal, ModeTopGoal}

// String returns the name shown on the controller screen.
func (m ScoringMode) String() string {
	switch m {
	case ModeNone:
		return "NONE"
	case ModeCollection:
		return "COLLECTION"
	case ModeMidGoal:
		return "MID GOAL"
	case ModeLowGoal:
		return "LOW GOAL"
	case ModeTopGoal:
		return "TOP GOAL"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether m is one of the declared modes.
func (m ScoringMode) Valid() bool {
	return m >= ModeNone && m <= ModeTopGoal
}

// MarshalText encodes the mode by name.
func (m ScoringMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMode accepts the screen name or its underscore form, case-insensitively.
func ParseMode(s string) (ScoringMode, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
	for _, m := range append([]ScoringMode{ModeNone}, Modes...) {
		if m.String() == norm {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("unknown scoring mode %q", s)
}

// ExecutionDirection records which routing path is running.
type ExecutionDirection int

const (
	DirectionNone ExecutionDirection = iota
	DirectionFront
	DirectionBack
	DirectionStorage
)

// String returns the direction name.
func (d ExecutionDirection) String() string {
	switch d {
	case DirectionNone:
		return "NONE"
	case DirectionFront:
		return "FRONT"
	case DirectionBack:
		return "BACK"
	case DirectionStorage:
		return "STORAGE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the direction by name.
func (d ExecutionDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
