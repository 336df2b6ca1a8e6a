// Package scenario loads scripted operator and sensor timelines used to drive
// the control core in simulation.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/CodexForgeBR/ballroute/internal/ejection"
	"github.com/CodexForgeBR/ballroute/internal/operator"
	"github.com/CodexForgeBR/ballroute/internal/sim"
)

// ErrInvalid marks a scenario that parsed but cannot be run.
var ErrInvalid = errors.New("invalid scenario")

// DefaultTickMS is the control period used when a scenario does not set one.
const DefaultTickMS = 20

// Sensor names accepted by clear and fail.
const (
	Sensor1 = "sensor1"
	Sensor2 = "sensor2"
)

// Scenario is a timeline of operator input and sensor readings.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	TickMS      int    `yaml:"tick_ms,omitempty"`
	DurationMS  int    `yaml:"duration_ms"`
	// Sorting is the initial sorting policy; empty keeps the configured one.
	Sorting string `yaml:"sorting,omitempty"`
	Steps   []Step `yaml:"steps"`
}

// Step is what happens at one instant of the timeline.
type Step struct {
	AtMS int `yaml:"at_ms"`
	// Press holds the named buttons for HoldMS, or for one poll when unset.
	Press  []string `yaml:"press,omitempty"`
	HoldMS int      `yaml:"hold_ms,omitempty"`
	LeftX  *int     `yaml:"left_x,omitempty"`
	RightX *int     `yaml:"right_x,omitempty"`

	Sensor1 *SensorInput `yaml:"sensor1,omitempty"`
	Sensor2 *SensorInput `yaml:"sensor2,omitempty"`
	Clear   []string     `yaml:"clear,omitempty"`
	Fail    []string     `yaml:"fail,omitempty"`
}

// SensorInput sets what a sensor sees. Ball picks a preset reading ("red",
// "blue" or "none"); otherwise the explicit reading is used.
type SensorInput struct {
	Ball        string `yaml:"ball,omitempty"`
	sim.Reading `yaml:",inline"`
}

// Resolve returns the reading the sensor should report.
func (s SensorInput) Resolve() (sim.Reading, error) {
	switch strings.ToLower(s.Ball) {
	case "":
		return s.Reading, nil
	case "red":
		return sim.RedBall, nil
	case "blue":
		return sim.BlueBall, nil
	case "none", "empty":
		return sim.EmptyReading, nil
	default:
		return sim.Reading{}, fmt.Errorf("unknown ball %q (valid: red, blue, none)", s.Ball)
	}
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parsing: %v", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the scenario, fills in defaults and orders the steps by
// time. Steps at the same instant keep their file order.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if s.TickMS == 0 {
		s.TickMS = DefaultTickMS
	}
	if s.TickMS < 0 {
		return fmt.Errorf("%w: tick_ms must be positive, got %d", ErrInvalid, s.TickMS)
	}
	if s.DurationMS <= 0 {
		return fmt.Errorf("%w: duration_ms must be positive, got %d", ErrInvalid, s.DurationMS)
	}
	if s.Sorting != "" {
		if _, err := ejection.ParsePolicy(s.Sorting); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	for i, st := range s.Steps {
		if err := st.validate(s.DurationMS); err != nil {
			return fmt.Errorf("%w: step %d (at_ms %d): %v", ErrInvalid, i, st.AtMS, err)
		}
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].AtMS < s.Steps[j].AtMS })
	return nil
}

func (st Step) validate(durationMS int) error {
	if st.AtMS < 0 || st.AtMS > durationMS {
		return fmt.Errorf("at_ms outside [0, %d]", durationMS)
	}
	if st.HoldMS < 0 {
		return fmt.Errorf("hold_ms must not be negative")
	}
	if st.empty() {
		return errors.New("step does nothing")
	}
	for _, name := range st.Press {
		if _, err := operator.ParseAction(name); err != nil {
			return err
		}
	}
	for _, in := range []*SensorInput{st.Sensor1, st.Sensor2} {
		if in == nil {
			continue
		}
		if _, err := in.Resolve(); err != nil {
			return err
		}
	}
	for _, name := range append(append([]string{}, st.Clear...), st.Fail...) {
		if name != Sensor1 && name != Sensor2 {
			return fmt.Errorf("unknown sensor %q (valid: %s, %s)", name, Sensor1, Sensor2)
		}
	}
	return nil
}

func (st Step) empty() bool {
	return len(st.Press) == 0 && st.LeftX == nil && st.RightX == nil &&
		st.Sensor1 == nil && st.Sensor2 == nil && len(st.Clear) == 0 && len(st.Fail) == 0
}

// Tick is the control period.
func (s *Scenario) Tick() time.Duration { return time.Duration(s.TickMS) * time.Millisecond }

// Duration is how long the scenario runs.
func (s *Scenario) Duration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}

// Ticks is the number of control periods needed to cover the duration.
func (s *Scenario) Ticks() int {
	return (s.DurationMS + s.TickMS - 1) / s.TickMS
}

// Policy returns the initial sorting policy and whether one was set.
func (s *Scenario) Policy() (ejection.SortingPolicy, bool) {
	if s.Sorting == "" {
		return 0, false
	}
	p, err := ejection.ParsePolicy(s.Sorting)
	return p, err == nil
}
