package control

import (
	"fmt"

	"github.com/CodexForgeBR/ballroute/internal/ejection"
	"github.com/CodexForgeBR/ballroute/internal/hardware"
	"github.com/CodexForgeBR/ballroute/internal/logging"
	"github.com/CodexForgeBR/ballroute/internal/operator"
	"github.com/CodexForgeBR/ballroute/internal/scoring"
	"github.com/CodexForgeBR/ballroute/internal/sim"
)

// Rig is the control core wired to a simulated robot.
type Rig struct {
	Robot    *sim.Robot
	Coord    *scoring.Coordinator
	Ejector  *ejection.Ejector
	Bindings *operator.Bindings

	// EjectorErr is why color sorting is unavailable, nil when it is ready.
	EjectorErr error
}

// Hardware maps the robot's devices onto the coordinator's hardware set.
// A nil fb uses the robot's own screen.
func Hardware(r *sim.Robot, fb hardware.Feedback) scoring.Hardware {
	if fb == nil {
		fb = r.Screen
	}
	return scoring.Hardware{
		Intake:   r.Intake,
		Top:      r.Top,
		Left:     r.Left,
		Right:    r.Right,
		Flap:     r.Flap,
		PTO:      r.PTO,
		Feedback: fb,
		Clock:    r.Clock,
	}
}

// NewRig builds the coordinator, the ejector and the operator bindings for r.
// A coordinator failure is fatal. An ejector that fails to initialize is kept
// in its non-functional state so routing still works without sorting.
func NewRig(r *sim.Robot, settings ejection.Settings, fb hardware.Feedback) (*Rig, error) {
	hw := Hardware(r, fb)
	coord, err := scoring.NewCoordinator(hw)
	if err != nil {
		return nil, fmt.Errorf("init coordinator: %w", err)
	}

	rig := &Rig{Robot: r, Coord: coord}
	rig.Ejector = ejection.New(r.Sensor1, r.Sensor2, settings, r.Clock, hw.Feedback)
	if err := rig.Ejector.Initialize(coord); err != nil {
		logging.Warnf("color sorting disabled: %v", err)
		rig.EjectorErr = err
	}
	rig.Bindings = operator.NewBindings(coord, rig.Ejector, hw.Feedback)
	return rig, nil
}
