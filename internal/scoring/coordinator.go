// Package scoring implements the ball-routing coordinator: the state machine
// that turns an operator's mode, direction and storage choices into motor and
// flap commands while keeping the storage count bounded and stopping stuck
// sequences on a timeout.
package scoring

import (
	"errors"
	"fmt"
	"time"

	"github.com/CodexForgeBR/ballroute/internal/hardware"
	"github.com/CodexForgeBR/ballroute/internal/logging"
)

// MaxStorage is the number of balls the internal store holds.
const MaxStorage = 3

// Settle delays observed after a forced stop or an actuation.
const (
	InterruptSettle        = 50 * time.Millisecond
	StorageInterruptSettle = 100 * time.Millisecond
	ToggleSettle           = 100 * time.Millisecond
	FlapSettle             = 50 * time.Millisecond
	PTOSettle              = 50 * time.Millisecond
	PTOStorageSettle       = 200 * time.Millisecond
	PTOPushSettle          = 300 * time.Millisecond
)

// Sequence timeouts.
const (
	StorageTimeout = 8000 * time.Millisecond
	PushTimeout    = 3000 * time.Millisecond
	LowGoalTimeout = 3000 * time.Millisecond
	DefaultTimeout = 5000 * time.Millisecond
)

// Controller screen lines.
const (
	lineStatus  = 1
	lineStorage = 2
)

var (
	// ErrStorageFull is returned when storage routing is requested at capacity.
	ErrStorageFull = errors.New("storage full")
	// ErrNoMode is returned when execution is requested before a mode is selected.
	ErrNoMode = errors.New("no scoring mode selected")
	// ErrPTONotReady is returned when the PTO is absent or will not leave drivetrain mode.
	ErrPTONotReady = errors.New("PTO not ready for scoring")
	// ErrHardwareMissing is returned by NewCoordinator when a required device is nil.
	ErrHardwareMissing = errors.New("required hardware missing")
)

// Hardware is the set of devices the coordinator drives. PTO may be nil on a
// robot without one; Feedback and Clock default to NopFeedback and SystemClock.
type Hardware struct {
	Intake   hardware.Motor
	Top      hardware.Motor
	Left     hardware.Motor
	Right    hardware.Motor
	Flap     hardware.Pneumatic
	PTO      hardware.PTO
	Feedback hardware.Feedback
	Clock    hardware.Clock
}

// Coordinator owns the routing state. It is driven from a single control loop
// and is not safe for concurrent use.
type Coordinator struct {
	hw Hardware

	mode           ScoringMode
	direction      ExecutionDirection
	active         bool
	inputRunning   bool
	pushing        bool
	startTime      time.Time
	storageCount   int
	storageRouting bool
	flapOpen       bool
}

// NewCoordinator validates the hardware and returns a stopped coordinator.
func NewCoordinator(hw Hardware) (*Coordinator, error) {
	missing := []string{}
	if hw.Intake == nil {
		missing = append(missing, "intake")
	}
	if hw.Top == nil {
		missing = append(missing, "top")
	}
	if hw.Left == nil {
		missing = append(missing, "left")
	}
	if hw.Right == nil {
		missing = append(missing, "right")
	}
	if hw.Flap == nil {
		missing = append(missing, "flap")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrHardwareMissing, missing)
	}
	if hw.Feedback == nil {
		hw.Feedback = hardware.NopFeedback{}
	}
	if hw.Clock == nil {
		hw.Clock = hardware.SystemClock{}
	}

	c := &Coordinator{hw: hw}
	c.StopAll()
	return c, nil
}

// Mode returns the selected scoring mode.
func (c *Coordinator) Mode() ScoringMode { return c.mode }

// Direction returns the running direction, NONE when idle.
func (c *Coordinator) Direction() ExecutionDirection { return c.direction }

// IsActive reports whether a motor sequence is running.
func (c *Coordinator) IsActive() bool { return c.active }

// IsInputRunning reports whether the intake motor is commanded on.
func (c *Coordinator) IsInputRunning() bool { return c.inputRunning }

// IsPushing reports whether the running sequence is a COLLECTION push.
func (c *Coordinator) IsPushing() bool { return c.active && c.pushing }

// Elapsed returns how long the running sequence has been active.
func (c *Coordinator) Elapsed() time.Duration {
	if !c.active {
		return 0
	}
	return c.hw.Clock.Now().Sub(c.startTime)
}

// SetMode assigns the scoring mode with no other side effect.
func (c *Coordinator) SetMode(m ScoringMode) {
	c.mode = m
	logging.Debugf("mode set to %s", m)
}

// SetCollectionMode selects COLLECTION.
func (c *Coordinator) SetCollectionMode() { c.SetMode(ModeCollection) }

// SetMidGoalMode selects MID GOAL.
func (c *Coordinator) SetMidGoalMode() { c.SetMode(ModeMidGoal) }

// SetLowGoalMode selects LOW GOAL.
func (c *Coordinator) SetLowGoalMode() { c.SetMode(ModeLowGoal) }

// SetTopGoalMode selects TOP GOAL.
func (c *Coordinator) SetTopGoalMode() { c.SetMode(ModeTopGoal) }

// StartIntakeAndStorage routes balls into the internal store for the current
// mode. It refuses when storage is full or the PTO cannot reach scorer mode.
// A running sequence is stopped first.
func (c *Coordinator) StartIntakeAndStorage() error {
	if c.IsStorageFull() {
		logging.Warnf("storage is full (%d/%d), not storing", c.storageCount, MaxStorage)
		hardware.Notify(c.hw.Feedback, lineStatus, "STORAGE FULL!", "--")
		return ErrStorageFull
	}

	if c.active {
		logging.Debugf("stopping %s to start storage", c.direction)
		c.StopAll()
		c.hw.Clock.Sleep(StorageInterruptSettle)
	}

	if err := c.verifyPTOForStorage(); err != nil {
		logging.Errorf("cannot start storage: %v", err)
		hardware.Notify(c.hw.Feedback, lineStatus, "PTO ERROR", "---")
		return err
	}

	c.startIntake(IntakeSpeed)
	c.CloseFlap()
	s := StorageRoute()
	c.hw.Top.SetVelocity(s.Top)
	c.hw.Left.SetVelocity(s.Left)
	c.hw.Right.SetVelocity(s.Right)

	c.begin(DirectionStorage)
	logging.Infof("storage routing started (%s, %d/%d)", c.mode, c.storageCount, MaxStorage)
	hardware.Notify(c.hw.Feedback, lineStatus,
		fmt.Sprintf("STORING: %s (%d/%d)", c.mode, c.storageCount, MaxStorage), "")
	return nil
}

// ExecuteFront runs the selected mode toward the front goal.
func (c *Coordinator) ExecuteFront() error {
	return c.execute(DirectionFront)
}

// ExecuteBack runs the selected mode toward the back goal.
func (c *Coordinator) ExecuteBack() error {
	return c.execute(DirectionBack)
}

// EjectBack selects MID GOAL and runs its back profile on the direct feed
// whatever the storage routing flag says, so the store count is untouched.
func (c *Coordinator) EjectBack() error {
	c.SetMode(ModeMidGoal)
	return c.run(DirectionBack, false)
}

func (c *Coordinator) execute(dir ExecutionDirection) error {
	return c.run(dir, c.storageRouting)
}

func (c *Coordinator) run(dir ExecutionDirection, fromStorage bool) error {
	if c.mode == ModeNone {
		logging.Warnf("%s requested with no mode selected", dir)
		hardware.Notify(c.hw.Feedback, lineStatus, "Need Mode", "---")
		return ErrNoMode
	}
	speeds, ok := Route(c.mode, dir, fromStorage)
	if !ok {
		return fmt.Errorf("no route for %s %s", dir, c.mode)
	}

	if c.active {
		logging.Debugf("interrupting %s to start %s", c.direction, dir)
		c.StopAll()
		c.hw.Clock.Sleep(InterruptSettle)
	}

	if dir == DirectionFront {
		switch c.mode {
		case ModeTopGoal:
			c.OpenFlap()
			c.hw.Clock.Sleep(FlapSettle)
		case ModeCollection:
			c.CloseFlap()
			c.hw.Clock.Sleep(FlapSettle)
		}
	}
	if c.mode != ModeLowGoal && c.hw.PTO != nil && c.hw.PTO.IsDrivetrainMode() {
		c.hw.PTO.SetScorerMode()
		c.hw.Clock.Sleep(PTOSettle)
	}

	if speeds.DrawsFromStorage {
		c.RemoveBallFromStorage()
	}
	c.hw.Top.SetVelocity(speeds.Top)
	c.hw.Left.SetVelocity(speeds.Left)
	c.hw.Right.SetVelocity(speeds.Right)
	c.startIntake(speeds.Intake)
	logging.Debugf("%s %s: intake=%d top=%d left=%d right=%d",
		dir, c.mode, speeds.Intake, speeds.Top, speeds.Left, speeds.Right)

	c.begin(dir)

	label := fmt.Sprintf("%s %s", dir, c.mode)
	if fromStorage {
		label = "STORAGE " + label
	}
	logging.Infof("%s started", label)
	hardware.Notify(c.hw.Feedback, lineStatus, label, "")
	return nil
}

// PushFront runs the COLLECTION push: PTO to drivetrain and the intake alone
// pushing forward.
func (c *Coordinator) PushFront() error {
	return c.push(DirectionFront)
}

// PushBack is PushFront with the intake reversed.
func (c *Coordinator) PushBack() error {
	return c.push(DirectionBack)
}

func (c *Coordinator) push(dir ExecutionDirection) error {
	if c.mode == ModeNone {
		hardware.Notify(c.hw.Feedback, lineStatus, "Need Mode", "---")
		return ErrNoMode
	}
	if c.active {
		c.StopAll()
		c.hw.Clock.Sleep(ToggleSettle)
	}
	if c.hw.PTO != nil && !c.hw.PTO.IsDrivetrainMode() {
		c.hw.PTO.SetDrivetrainMode()
		c.hw.Clock.Sleep(PTOPushSettle)
	}

	speed := IntakeSpeed
	text := "PUSH FORWARD"
	if dir == DirectionBack {
		speed = IntakeReverseSpeed
		text = "PUSH BACKWARD"
	}
	c.startIntake(speed)
	c.begin(dir)
	c.pushing = true

	logging.Infof("%s started (%s)", text, c.mode)
	hardware.Notify(c.hw.Feedback, lineStatus, text, "..")
	return nil
}

// StartIntake runs the intake alone as an active sequence with no direction.
func (c *Coordinator) StartIntake() {
	if c.active {
		c.StopAll()
		c.hw.Clock.Sleep(InterruptSettle)
	}
	c.startIntake(IntakeSpeed)
	c.begin(DirectionNone)
	logging.Info("intake started")
}

// StopAll zeroes every motor, closes the flap and resets the sequence state.
// It is safe to call at any time and any number of times.
func (c *Coordinator) StopAll() {
	wasActive, prev := c.active, c.direction

	// The intake is commanded twice so the stop lands.
	c.hw.Intake.SetVelocity(0)
	c.hw.Intake.SetVelocity(0)
	c.hw.Left.SetVelocity(0)
	c.hw.Right.SetVelocity(0)
	c.hw.Top.SetVelocity(0)
	c.CloseFlap()

	c.active = false
	c.inputRunning = false
	c.pushing = false
	c.direction = DirectionNone

	if wasActive {
		logging.Debugf("stopped %s sequence", prev)
	}
}

// Tick enforces the sequence timeouts. It reports whether it stopped a
// timed-out sequence.
func (c *Coordinator) Tick() bool {
	if !c.active {
		return false
	}
	limit := c.Timeout()
	elapsed := c.Elapsed()
	if elapsed <= limit {
		return false
	}

	logging.Warnf("%s %s timed out after %s", c.direction, c.mode, logging.FormatMillis(elapsed))
	c.StopAll()
	hardware.Notify(c.hw.Feedback, lineStorage, "TIMEOUT STOP", "---")
	return true
}

// Timeout returns the limit for the running sequence.
func (c *Coordinator) Timeout() time.Duration {
	switch {
	case c.mode == ModeLowGoal:
		return LowGoalTimeout
	case c.direction == DirectionStorage:
		return StorageTimeout
	case c.mode == ModeCollection && (c.direction == DirectionFront || c.direction == DirectionBack):
		return PushTimeout
	default:
		return DefaultTimeout
	}
}

func (c *Coordinator) begin(dir ExecutionDirection) {
	c.direction = dir
	c.active = true
	c.pushing = false
	c.startTime = c.hw.Clock.Now()
}

func (c *Coordinator) startIntake(rpm int) {
	c.hw.Intake.SetVelocity(rpm)
	c.inputRunning = true
}

func (c *Coordinator) verifyPTOForStorage() error {
	if c.hw.PTO == nil {
		return ErrPTONotReady
	}
	if !c.hw.PTO.IsDrivetrainMode() {
		return nil
	}
	c.hw.PTO.SetScorerMode()
	c.hw.Clock.Sleep(PTOStorageSettle)
	if c.hw.PTO.IsDrivetrainMode() {
		return fmt.Errorf("%w: still in drivetrain mode", ErrPTONotReady)
	}
	return nil
}
