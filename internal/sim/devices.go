// Package sim provides in-memory hardware for the ballroute simulator and for
// tests. Every device records the commands it receives so callers can assert
// on the exact actuation history.
package sim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CodexForgeBR/ballroute/internal/hardware"
)

// ErrSensorFault is returned by an OpticalSensor that has been told to fail.
var ErrSensorFault = errors.New("optical sensor read failed")

// Motor records velocity commands.
type Motor struct {
	mu       sync.Mutex
	Name     string
	velocity int
	Commands []int
}

// NewMotor returns a stopped motor.
func NewMotor(name string) *Motor {
	return &Motor{Name: name}
}

// SetVelocity implements hardware.Motor.
func (m *Motor) SetVelocity(rpm int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.velocity = rpm
	m.Commands = append(m.Commands, rpm)
}

// Velocity returns the most recently commanded velocity.
func (m *Motor) Velocity() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.velocity
}

// Pneumatic records actuations.
type Pneumatic struct {
	state      bool
	Actuations []bool
}

// NewPneumatic returns an actuator in the given initial state.
func NewPneumatic(initial bool) *Pneumatic {
	return &Pneumatic{state: initial}
}

// SetState implements hardware.Pneumatic.
func (p *Pneumatic) SetState(on bool) {
	p.state = on
	p.Actuations = append(p.Actuations, on)
}

// State returns the last commanded state.
func (p *Pneumatic) State() bool {
	return p.state
}

// PTO is a power take-off coupling. When Stuck is set, SetScorerMode has no
// effect, which models a pneumatic that failed to actuate.
type PTO struct {
	drivetrain bool
	Stuck      bool
	Switches   int
}

// NewPTO returns a PTO in drivetrain or scorer mode.
func NewPTO(drivetrain bool) *PTO {
	return &PTO{drivetrain: drivetrain}
}

// IsDrivetrainMode implements hardware.PTO.
func (p *PTO) IsDrivetrainMode() bool { return p.drivetrain }

// SetScorerMode implements hardware.PTO.
func (p *PTO) SetScorerMode() {
	if p.Stuck {
		return
	}
	if p.drivetrain {
		p.Switches++
	}
	p.drivetrain = false
}

// SetDrivetrainMode implements hardware.PTO.
func (p *PTO) SetDrivetrainMode() {
	if !p.drivetrain {
		p.Switches++
	}
	p.drivetrain = true
}

// Reading is one optical sample.
type Reading struct {
	Proximity  float64 `yaml:"proximity" json:"proximity"`
	Hue        float64 `yaml:"hue" json:"hue"`
	Saturation float64 `yaml:"saturation" json:"saturation"`
	Brightness float64 `yaml:"brightness" json:"brightness"`
}

// EmptyReading is what a sensor sees with nothing in front of it.
var EmptyReading = Reading{Proximity: 255}

// RedBall and BlueBall are representative readings for a ball in view.
var (
	RedBall  = Reading{Proximity: 20, Hue: 10, Saturation: 0.8, Brightness: 0.6}
	BlueBall = Reading{Proximity: 20, Hue: 220, Saturation: 0.8, Brightness: 0.6}
)

// OpticalSensor returns a scripted reading until changed.
type OpticalSensor struct {
	mu      sync.Mutex
	reading Reading
	err     error
	Reads   int
}

// NewOpticalSensor returns a sensor that sees nothing.
func NewOpticalSensor() *OpticalSensor {
	return &OpticalSensor{reading: EmptyReading}
}

// Set replaces the current reading and clears any injected fault.
func (s *OpticalSensor) Set(r Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reading = r
	s.err = nil
}

// Clear makes the sensor see nothing.
func (s *OpticalSensor) Clear() {
	s.Set(EmptyReading)
}

// Fail makes every subsequent read return err until Set or Clear is called.
// A nil err injects ErrSensorFault.
func (s *OpticalSensor) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ErrSensorFault
	}
	s.err = err
}

func (s *OpticalSensor) read(pick func(Reading) float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	if s.err != nil {
		return 0, s.err
	}
	return pick(s.reading), nil
}

// Proximity implements hardware.OpticalSensor.
func (s *OpticalSensor) Proximity() (float64, error) {
	return s.read(func(r Reading) float64 { return r.Proximity })
}

// Hue implements hardware.OpticalSensor.
func (s *OpticalSensor) Hue() (float64, error) {
	return s.read(func(r Reading) float64 { return r.Hue })
}

// Saturation implements hardware.OpticalSensor.
func (s *OpticalSensor) Saturation() (float64, error) {
	return s.read(func(r Reading) float64 { return r.Saturation })
}

// Brightness implements hardware.OpticalSensor.
func (s *OpticalSensor) Brightness() (float64, error) {
	return s.read(func(r Reading) float64 { return r.Brightness })
}

// Clock is a manual clock. Sleep advances time instantly so settle delays
// are observable without waiting.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	Slept  []time.Duration
	origin time.Time
}

// NewClock returns a clock starting at a fixed instant.
func NewClock() *Clock {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Clock{now: start, origin: start}
}

// Now implements hardware.Clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep implements hardware.Clock.
func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Slept = append(c.Slept, d)
	c.now = c.now.Add(d)
}

// Advance moves time forward without recording a sleep.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Elapsed returns the time since the clock was created.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(c.origin)
}

// Feedback records display lines and rumbles.
type Feedback struct {
	Disconnected bool
	Lines        [3]string
	Prints       []string
	Rumbles      []string
}

// Connected implements hardware.Feedback.
func (f *Feedback) Connected() bool { return !f.Disconnected }

// Print implements hardware.Feedback.
func (f *Feedback) Print(line int, text string) {
	if line >= 0 && line < len(f.Lines) {
		f.Lines[line] = text
	}
	f.Prints = append(f.Prints, fmt.Sprintf("%d:%s", line, text))
}

// Rumble implements hardware.Feedback.
func (f *Feedback) Rumble(pattern string) {
	f.Rumbles = append(f.Rumbles, pattern)
}

// Robot bundles one of every device the core needs.
type Robot struct {
	Intake  *Motor
	Top     *Motor
	Left    *Motor
	Right   *Motor
	Flap    *Pneumatic
	PTO     *PTO
	Sensor1 *OpticalSensor
	Sensor2 *OpticalSensor
	Screen  *Feedback
	Clock   *Clock
}

// NewRobot returns an idle robot with the PTO in drivetrain mode and the
// flap closed.
func NewRobot() *Robot {
	return &Robot{
		Intake:  NewMotor("intake"),
		Top:     NewMotor("top"),
		Left:    NewMotor("left"),
		Right:   NewMotor("right"),
		Flap:    NewPneumatic(hardware.FlapClosed),
		PTO:     NewPTO(true),
		Sensor1: NewOpticalSensor(),
		Sensor2: NewOpticalSensor(),
		Screen:  &Feedback{},
		Clock:   NewClock(),
	}
}

// Velocities returns intake, top, left and right velocities in that order.
func (r *Robot) Velocities() [4]int {
	return [4]int{r.Intake.Velocity(), r.Top.Velocity(), r.Left.Velocity(), r.Right.Velocity()}
}
