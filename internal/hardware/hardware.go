// Package hardware defines the narrow device contracts consumed by the
// ball-routing core.
//
// Drivers for real motors, pneumatics and optical sensors live outside this
// module; the core only ever talks to these interfaces. The simulator in
// internal/sim provides in-memory implementations.
package hardware

import "time"

// Motor is a velocity-controlled motor. Commands are idempotent and take
// effect immediately; zero stops the motor.
type Motor interface {
	SetVelocity(rpm int)
}

// Pneumatic is a binary actuator.
type Pneumatic interface {
	SetState(on bool)
}

// OpticalSensor reads proximity and HSV color. Any read may fail; callers
// treat a failed read as "cannot classify".
type OpticalSensor interface {
	Proximity() (float64, error)
	Hue() (float64, error)
	Saturation() (float64, error)
	Brightness() (float64, error)
}

// PTO is the power take-off coupling that decides whether the middle motors
// drive the wheels or the scorer.
type PTO interface {
	IsDrivetrainMode() bool
	SetScorerMode()
	SetDrivetrainMode()
}

// Feedback is the operator-facing display and haptics sink. Calls are
// fire-and-forget; implementations must not block the control loop.
type Feedback interface {
	Connected() bool
	Print(line int, text string)
	Rumble(pattern string)
}

// Clock supplies timestamps and the blocking settle delays used between
// actuations.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Flap polarity. The flap solenoid is wired reversed: energized holds balls.
const (
	FlapClosed = true
	FlapOpen   = false
)

// NopFeedback discards all feedback. It reports itself as disconnected.
type NopFeedback struct{}

func (NopFeedback) Connected() bool { return false }
func (NopFeedback) Print(int, string) {}
func (NopFeedback) Rumble(string) {}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Notify sends a display line and a rumble to fb if it is connected.
// Empty text or pattern skips that half.
func Notify(fb Feedback, line int, text, rumble string) {
	if fb == nil || !fb.Connected() {
		return
	}
	if text != "" {
		fb.Print(line, text)
	}
	if rumble != "" {
		fb.Rumble(rumble)
	}
}
