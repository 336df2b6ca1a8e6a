// Package config defines the ballroute configuration model and default values.
//
// Configuration is assembled from multiple sources with a strict precedence
// chain: built-in defaults < global config file < project config file <
// explicit config file < BALLROUTE_* environment < CLI flag overrides.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/CodexForgeBR/ballroute/internal/ejection"
)

// WhitelistedVars lists every configuration variable name that may appear in
// config files or the environment. Anything else is silently ignored.
var WhitelistedVars = [17]string{
	"TICK_MS",
	"SORTING_POLICY",
	"EJECT_DURATION_MS",
	"PROXIMITY_THRESHOLD",
	"MIN_SATURATION",
	"MIN_BRIGHTNESS",
	"RED_HUE_MAX",
	"RED_HUE_HIGH_MIN",
	"BLUE_HUE_MIN",
	"BLUE_HUE_MAX",
	"CONFIRMATION_COUNT",
	"PASSAGE_TIMEOUT_MS",
	"DIRECTION_WINDOW_MS",
	"VERBOSE",
	"SCENARIO_FILE",
	"REPORT_FILE",
	"REALTIME",
}

// ErrInvalid marks a configuration that loaded but cannot drive the robot.
var ErrInvalid = errors.New("invalid config")

// Config holds every configuration field for the ballroute CLI.
type Config struct {
	// Control loop.
	TickMS int

	// Sorting.
	SortingPolicy   string
	EjectDurationMS int

	// Color classification.
	ProximityThreshold float64
	MinSaturation      float64
	MinBrightness      float64
	RedHueMax          float64
	RedHueHighMin      float64
	BlueHueMin         float64
	BlueHueMax         float64
	ConfirmationCount  int

	// Ball tracking windows.
	PassageTimeoutMS  int
	DirectionWindowMS int

	// Files.
	ScenarioFile string
	ReportFile   string

	// Runtime flags.
	Verbose  bool
	Realtime bool

	// CLI-only flags (not loaded from config files).
	ConfigFile string
}

// NewDefaultConfig returns a Config populated with all built-in default values.
func NewDefaultConfig() *Config {
	d := ejection.DefaultSettings()
	return &Config{
		TickMS:             20,
		SortingPolicy:      d.Policy.String(),
		EjectDurationMS:    int(d.EjectDuration / time.Millisecond),
		ProximityThreshold: d.ProximityThreshold,
		MinSaturation:      d.MinSaturation,
		MinBrightness:      d.MinBrightness,
		RedHueMax:          d.RedHueMax,
		RedHueHighMin:      d.RedHueHighMin,
		BlueHueMin:         d.BlueHueMin,
		BlueHueMax:         d.BlueHueMax,
		ConfirmationCount:  d.ConfirmationCount,
		PassageTimeoutMS:   int(d.PassageTimeout / time.Millisecond),
		DirectionWindowMS:  int(d.DirectionWindow / time.Millisecond),
	}
}

// Tick is the control period.
func (c *Config) Tick() time.Duration { return time.Duration(c.TickMS) * time.Millisecond }

// Validate rejects values the control core cannot run with.
func (c *Config) Validate() error {
	if c.TickMS <= 0 {
		return fmt.Errorf("%w: TICK_MS must be positive, got %d", ErrInvalid, c.TickMS)
	}
	if c.ConfirmationCount < 1 {
		return fmt.Errorf("%w: CONFIRMATION_COUNT must be at least 1, got %d", ErrInvalid, c.ConfirmationCount)
	}
	if c.BlueHueMin > c.BlueHueMax {
		return fmt.Errorf("%w: BLUE_HUE_MIN %.0f exceeds BLUE_HUE_MAX %.0f", ErrInvalid, c.BlueHueMin, c.BlueHueMax)
	}
	if c.RedHueMax >= c.BlueHueMin || c.RedHueHighMin <= c.BlueHueMax {
		return fmt.Errorf("%w: red and blue hue bands overlap", ErrInvalid)
	}
	if c.PassageTimeoutMS <= 0 || c.DirectionWindowMS <= 0 {
		return fmt.Errorf("%w: PASSAGE_TIMEOUT_MS and DIRECTION_WINDOW_MS must be positive", ErrInvalid)
	}
	if _, err := ejection.ParsePolicy(c.SortingPolicy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// EjectionSettings converts the classification and sorting fields into the
// ejection package's settings. The duration is clamped into range.
func (c *Config) EjectionSettings() (ejection.Settings, error) {
	policy, err := ejection.ParsePolicy(c.SortingPolicy)
	if err != nil {
		return ejection.Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return ejection.Settings{
		ProximityThreshold: c.ProximityThreshold,
		MinSaturation:      c.MinSaturation,
		MinBrightness:      c.MinBrightness,
		RedHueMax:          c.RedHueMax,
		RedHueHighMin:      c.RedHueHighMin,
		BlueHueMin:         c.BlueHueMin,
		BlueHueMax:         c.BlueHueMax,
		ConfirmationCount:  c.ConfirmationCount,
		PassageTimeout:     time.Duration(c.PassageTimeoutMS) * time.Millisecond,
		DirectionWindow:    time.Duration(c.DirectionWindowMS) * time.Millisecond,
		EjectDuration:      ejection.ClampDuration(time.Duration(c.EjectDurationMS) * time.Millisecond),
		Policy:             policy,
	}, nil
}
