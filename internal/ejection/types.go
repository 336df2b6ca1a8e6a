package ejection

import (
	"fmt"
	"strings"
	"time"
)

// BallColor is the classification of one optical sample.
type BallColor int

const (
	ColorUnknown BallColor = iota
	ColorNoBall
	ColorRed
	ColorBlue
)

func (c BallColor) String() string {
	switch c {
	case ColorNoBall:
		return "NO_BALL"
	case ColorRed:
		return "RED"
	case ColorBlue:
		return "BLUE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the color by name.
func (c BallColor) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// IsBall reports whether c is a real ball color.
func (c BallColor) IsBall() bool { return c == ColorRed || c == ColorBlue }

// BallDirection is the inferred travel direction.
type BallDirection int

const (
	DirectionUnknown BallDirection = iota
	DirectionForward
	DirectionReverse
	DirectionStationary
)

func (d BallDirection) String() string {
	switch d {
	case DirectionForward:
		return "FORWARD"
	case DirectionReverse:
		return "REVERSE"
	case DirectionStationary:
		return "STATIONARY"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the direction by name.
func (d BallDirection) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// SortingPolicy decides which colors are diverted.
type SortingPolicy int

const (
	CollectRed SortingPolicy = iota
	CollectBlue
	CollectAll
	EjectAll
)

var policyNames = map[SortingPolicy]string{
	CollectRed:  "COLLECT_RED",
	CollectBlue: "COLLECT_BLUE",
	CollectAll:  "COLLECT_ALL",
	EjectAll:    "EJECT_ALL",
}

func (p SortingPolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return "UNKNOWN_MODE"
}

// MarshalText encodes the policy by name.
func (p SortingPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// ParsePolicy accepts COLLECT_RED, collect-red, RED, BLUE, ALL, NONE
// (collect all) and EJECT_ALL, case-insensitively.
func ParsePolicy(s string) (SortingPolicy, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch norm {
	case "RED":
		return CollectRed, nil
	case "BLUE":
		return CollectBlue, nil
	case "ALL", "NONE", "OFF":
		return CollectAll, nil
	}
	for p, name := range policyNames {
		if name == norm {
			return p, nil
		}
	}
	return CollectAll, fmt.Errorf("unknown sorting policy %q", s)
}

// ShouldEject reports whether policy diverts a ball of color c.
func ShouldEject(policy SortingPolicy, c BallColor) bool {
	switch policy {
	case CollectRed:
		return c == ColorBlue
	case CollectBlue:
		return c == ColorRed
	case EjectAll:
		return true
	default:
		return false
	}
}

// Ejection duration bounds.
const (
	MinEjectDuration     = 100 * time.Millisecond
	MaxEjectDuration     = 2000 * time.Millisecond
	DefaultEjectDuration = 300 * time.Millisecond
	EjectStopSettle      = 100 * time.Millisecond
	RestoreSettle        = 50 * time.Millisecond
)

// ClampDuration bounds d to the allowed ejection range.
func ClampDuration(d time.Duration) time.Duration {
	return max(MinEjectDuration, min(d, MaxEjectDuration))
}

// Settings tunes classification and ejection timing.
type Settings struct {
	ProximityThreshold float64
	MinSaturation      float64
	MinBrightness      float64
	RedHueMax          float64
	RedHueHighMin      float64
	BlueHueMin         float64
	BlueHueMax         float64
	ConfirmationCount  int
	PassageTimeout     time.Duration
	DirectionWindow    time.Duration
	EjectDuration      time.Duration
	Policy             SortingPolicy
}

// DefaultSettings returns the tuned competition values.
func DefaultSettings() Settings {
	return Settings{
		ProximityThreshold: 100,
		MinSaturation:      0.3,
		MinBrightness:      0.1,
		RedHueMax:          20,
		RedHueHighMin:      340,
		BlueHueMin:         190,
		BlueHueMax:         250,
		ConfirmationCount:  3,
		PassageTimeout:     1000 * time.Millisecond,
		DirectionWindow:    500 * time.Millisecond,
		EjectDuration:      DefaultEjectDuration,
		Policy:             CollectAll,
	}
}

// Statistics counts what the sensors have seen.
type Statistics struct {
	Red       int `json:"red"`
	Blue      int `json:"blue"`
	Ejected   int `json:"ejected"`
	Conflicts int `json:"conflicts"`
}
