// Package ejection classifies balls passing two optical sensors and diverts
// the ones the sorting policy rejects. An ejection borrows the coordinator's
// MID GOAL back-execution profile for a bounded duration and then resumes
// whatever sequence the coordinator was running.
package ejection

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CodexForgeBR/ballroute/internal/hardware"
	"github.com/CodexForgeBR/ballroute/internal/logging"
	"github.com/CodexForgeBR/ballroute/internal/scoring"
)

var (
	// ErrCoordinatorBusy is returned when an automatic ejection finds the
	// coordinator running a sequence. The caller retries on a later tick.
	ErrCoordinatorBusy = errors.New("coordinator busy")
	// ErrEjectionActive is returned when an ejection is already running.
	ErrEjectionActive = errors.New("ejection already active")
	// ErrNotFunctional is returned when the subsystem failed to initialize.
	ErrNotFunctional = errors.New("color ejection not functional")
	// ErrEjectionIdle is returned by StopEjection when nothing is running.
	ErrEjectionIdle = errors.New("no ejection running")
)

// Coordinator is the part of the scoring coordinator that ejection drives.
// *scoring.Coordinator satisfies it.
type Coordinator interface {
	IsActive() bool
	IsInputRunning() bool
	IsPushing() bool
	Mode() scoring.ScoringMode
	Direction() scoring.ExecutionDirection
	SetMode(m scoring.ScoringMode)
	EjectBack() error
	StopAll()
	ExecuteFront() error
	ExecuteBack() error
	PushFront() error
	PushBack() error
	StartIntakeAndStorage() error
	StartIntake()
}

var _ Coordinator = (*scoring.Coordinator)(nil)

type sensorState struct {
	dev         hardware.OpticalSensor
	triggered   bool
	triggerTime time.Time
	buffer      *confirmationBuffer
	counted     bool
}

func (s *sensorState) reset() {
	s.triggered = false
	s.triggerTime = time.Time{}
	s.counted = false
	s.buffer.reset()
}

// Ejector is the color ejection subsystem. Like the coordinator it is driven
// from the control loop and is not safe for concurrent use.
type Ejector struct {
	cfg      Settings
	clock    hardware.Clock
	feedback hardware.Feedback
	coord    Coordinator

	sensors    [2]*sensorState
	functional bool

	policy        SortingPolicy
	lastColor     BallColor
	lastDirection BallDirection
	inConflict    bool

	active    bool
	startTime time.Time
	duration  time.Duration
	saved     Snapshot

	stats Statistics
}

// New returns an uninitialized ejector. Call Initialize before Tick.
func New(sensor1, sensor2 hardware.OpticalSensor, cfg Settings, clock hardware.Clock, feedback hardware.Feedback) *Ejector {
	if clock == nil {
		clock = hardware.SystemClock{}
	}
	if feedback == nil {
		feedback = hardware.NopFeedback{}
	}
	e := &Ejector{
		cfg:      cfg,
		clock:    clock,
		feedback: feedback,
		policy:   cfg.Policy,
		duration: ClampDuration(cfg.EjectDuration),
	}
	e.sensors[0] = &sensorState{dev: sensor1, buffer: newConfirmationBuffer(cfg.ConfirmationCount)}
	e.sensors[1] = &sensorState{dev: sensor2, buffer: newConfirmationBuffer(cfg.ConfirmationCount)}
	return e
}

// Initialize binds the coordinator and probes both sensors. On failure the
// ejector stays non-functional and Tick does nothing.
func (e *Ejector) Initialize(coord Coordinator) error {
	e.functional = false
	if coord == nil {
		return fmt.Errorf("%w: coordinator is nil", ErrNotFunctional)
	}
	e.coord = coord
	for i, s := range e.sensors {
		if s.dev == nil {
			return fmt.Errorf("%w: sensor %d missing", ErrNotFunctional, i+1)
		}
		prox, err := s.dev.Proximity()
		if err != nil {
			return fmt.Errorf("%w: sensor %d: %w", ErrNotFunctional, i+1, err)
		}
		logging.Debugf("sensor %d proximity %.1f", i+1, prox)
	}
	e.functional = true
	logging.Successf("color sorting ready (%s)", e.policy)
	return nil
}

// Functional reports whether Initialize succeeded.
func (e *Ejector) Functional() bool { return e.functional }

// Tick runs one pass of detection, classification, ejection and timeouts.
func (e *Ejector) Tick() {
	if !e.functional {
		return
	}
	now := e.clock.Now()

	for i, s := range e.sensors {
		present := Present(s.dev, e.cfg.ProximityThreshold)
		switch {
		case present && !s.triggered:
			s.triggered = true
			s.triggerTime = now
			s.counted = false
			logging.Debugf("ball at sensor %d", i+1)
		case !present && s.triggered:
			// The trigger time is kept so direction inference still sees it.
			s.triggered = false
			logging.Debugf("ball left sensor %d", i+1)
		}
	}

	s1, s2 := e.sensors[0], e.sensors[1]
	confirmed1, confirmed2 := ColorUnknown, ColorUnknown
	if s1.triggered {
		confirmed1 = s1.buffer.push(Classify(s1.dev, e.cfg))
		if confirmed1.IsBall() {
			e.lastColor = confirmed1
			if !s1.counted {
				s1.counted = true
				e.count(confirmed1)
				logging.Infof("ball color confirmed: %s", confirmed1)
			}
		}
	}
	if s2.triggered {
		confirmed2 = s2.buffer.push(Classify(s2.dev, e.cfg))
	}

	conflict := confirmed1.IsBall() && confirmed2.IsBall() && confirmed1 != confirmed2
	if conflict && !e.inConflict {
		e.stats.Conflicts++
		logging.Warnf("color mismatch between sensors: %s vs %s", confirmed1, confirmed2)
	}
	e.inConflict = conflict

	e.lastDirection = e.inferDirection()

	if !e.active && e.lastColor.IsBall() && ShouldEject(e.policy, e.lastColor) && e.atEjectionPoint(now) {
		if err := e.StartEjection(); err != nil && !errors.Is(err, ErrCoordinatorBusy) {
			logging.Warnf("ejection not started: %v", err)
		}
	}

	if e.active && now.Sub(e.startTime) >= e.duration {
		if err := e.StopEjection(); err != nil {
			logging.Errorf("stop ejection: %v", err)
		}
	}

	if s1.triggered && now.Sub(s1.triggerTime) > e.cfg.PassageTimeout {
		logging.Warn("sensor 1 passage timeout, resetting")
		s1.triggered = false
		e.lastColor = ColorUnknown
	}
	if s2.triggered && now.Sub(s2.triggerTime) > e.cfg.PassageTimeout {
		logging.Warn("sensor 2 passage timeout, resetting")
		s2.triggered = false
	}
}

func (e *Ejector) count(c BallColor) {
	switch c {
	case ColorRed:
		e.stats.Red++
	case ColorBlue:
		e.stats.Blue++
	}
}

// atEjectionPoint reports whether the ball is at, or recently passed, the
// downstream sensor.
func (e *Ejector) atEjectionPoint(now time.Time) bool {
	s2 := e.sensors[1]
	if s2.triggered {
		return true
	}
	return !s2.triggerTime.IsZero() && now.Sub(s2.triggerTime) < e.cfg.PassageTimeout
}

func (e *Ejector) inferDirection() BallDirection {
	s1, s2 := e.sensors[0], e.sensors[1]
	if !s1.triggerTime.IsZero() && !s2.triggerTime.IsZero() {
		diff := s2.triggerTime.Sub(s1.triggerTime)
		if diff.Abs() < e.cfg.DirectionWindow {
			if s1.triggerTime.Before(s2.triggerTime) {
				return DirectionForward
			}
			return DirectionReverse
		}
	}
	if s1.triggered != s2.triggered {
		return DirectionStationary
	}
	return DirectionUnknown
}

// StartEjection begins an automatic ejection. It refuses while the
// coordinator is running a sequence.
func (e *Ejector) StartEjection() error {
	if !e.functional {
		return ErrNotFunctional
	}
	if e.active {
		return ErrEjectionActive
	}
	if e.coord.IsActive() {
		logging.Debug("ejection delayed, coordinator busy")
		return ErrCoordinatorBusy
	}
	e.begin()
	return nil
}

// TriggerEjection begins an ejection on operator request. Unlike
// StartEjection it preempts a running sequence, which is restored afterwards.
func (e *Ejector) TriggerEjection() error {
	if !e.functional {
		return ErrNotFunctional
	}
	if e.active {
		return ErrEjectionActive
	}
	logging.Info("manual ejection triggered")
	hardware.Notify(e.feedback, 1, "MANUAL EJECT", "-")
	e.begin()
	return nil
}

func (e *Ejector) begin() {
	e.saved = capture(e.coord)
	logging.Debugf("saved coordinator: active=%t input=%t mode=%s direction=%s",
		e.saved.WasActive, e.saved.WasInputRunning, e.saved.Mode, e.saved.Direction)

	e.coord.StopAll()
	e.clock.Sleep(EjectStopSettle)

	e.active = true
	e.stats.Ejected++
	if err := e.coord.EjectBack(); err != nil {
		logging.Errorf("ejection drive failed: %v", err)
	}
	e.startTime = e.clock.Now()
	what := "manual"
	if e.lastColor.IsBall() {
		what = e.lastColor.String()
	}
	logging.Infof("ejecting %s for %s (total %d)", what, logging.FormatMillis(e.duration), e.stats.Ejected)
}

// StopEjection ends the running ejection, clears all detection state and
// restores the coordinator from the snapshot.
func (e *Ejector) StopEjection() error {
	if !e.active {
		return ErrEjectionIdle
	}
	e.active = false
	e.coord.StopAll()
	e.resetDetection()
	e.restore()
	logging.Info("ejection finished")
	return nil
}

func (e *Ejector) resetDetection() {
	for _, s := range e.sensors {
		s.reset()
	}
	e.lastColor = ColorUnknown
	e.lastDirection = DirectionUnknown
	e.inConflict = false
}

// restore replays the snapshot if the coordinator was running; an idle one is
// left stopped in MID GOAL. The snapshot is consumed whatever happens.
func (e *Ejector) restore() {
	defer func() { e.saved.Valid = false }()

	if !e.saved.Valid {
		logging.Warn("no saved coordinator state to restore")
		return
	}
	if !e.saved.WasActive {
		logging.Debugf("coordinator was idle before ejection, staying in %s", e.coord.Mode())
		return
	}
	r, err := e.saved.plan()
	if err != nil {
		logging.Errorf("cannot restore coordinator: %v", err)
		return
	}
	e.clock.Sleep(RestoreSettle)
	if err := r.resume(e.coord); err != nil {
		logging.Warnf("resume %s: %v", r, err)
		return
	}
	logging.Debugf("coordinator restored: %s", r)
}

// Active reports whether an ejection is running.
func (e *Ejector) Active() bool { return e.active }

// SavedSnapshot returns the current snapshot slot.
func (e *Ejector) SavedSnapshot() Snapshot { return e.saved }

// SetEjectionDuration clamps d into the allowed range and uses it for the
// running and later ejections. It returns the value applied.
func (e *Ejector) SetEjectionDuration(d time.Duration) time.Duration {
	clamped := ClampDuration(d)
	if clamped != d {
		logging.Warnf("ejection duration %s clamped to %s", logging.FormatMillis(d), logging.FormatMillis(clamped))
	}
	e.duration = clamped
	return clamped
}

// EjectionDuration returns the duration in use.
func (e *Ejector) EjectionDuration() time.Duration { return e.duration }

// SetSortingPolicy replaces the policy.
func (e *Ejector) SetSortingPolicy(p SortingPolicy) {
	e.policy = p
	logging.Infof("sorting policy %s", p)
}

// SortingPolicy returns the active policy.
func (e *Ejector) SortingPolicy() SortingPolicy { return e.policy }

// ToggleSorting switches between collecting everything and collecting red.
// It returns the new policy.
func (e *Ejector) ToggleSorting() SortingPolicy {
	if e.policy == CollectAll {
		e.SetSortingPolicy(CollectRed)
	} else {
		e.SetSortingPolicy(CollectAll)
	}
	return e.policy
}

// Statistics returns the counters.
func (e *Ejector) Statistics() Statistics { return e.stats }

// ResetStatistics zeroes the counters.
func (e *Ejector) ResetStatistics() { e.stats = Statistics{} }

// LastColor returns the most recently confirmed color.
func (e *Ejector) LastColor() BallColor { return e.lastColor }

// LastDirection returns the most recently inferred direction.
func (e *Ejector) LastDirection() BallDirection { return e.lastDirection }

// BallDetected reports whether either sensor is triggered.
func (e *Ejector) BallDetected() bool {
	return e.sensors[0].triggered || e.sensors[1].triggered
}

// Status returns a multi-line dump of the subsystem.
func (e *Ejector) Status() string {
	trig := func(b bool) string {
		if b {
			return "TRIGGERED"
		}
		return "CLEAR"
	}
	act := "INACTIVE"
	if e.active {
		act = "ACTIVE"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Mode: %s\n", e.policy)
	fmt.Fprintf(&b, "Last Color: %s\n", e.lastColor)
	fmt.Fprintf(&b, "Last Direction: %s\n", e.lastDirection)
	fmt.Fprintf(&b, "Sensor 1: %s\n", trig(e.sensors[0].triggered))
	fmt.Fprintf(&b, "Sensor 2: %s\n", trig(e.sensors[1].triggered))
	fmt.Fprintf(&b, "Ejection: %s\n", act)
	fmt.Fprintf(&b, "Ejection Duration: %dms\n", e.duration.Milliseconds())
	fmt.Fprintf(&b, "Red Balls: %d\n", e.stats.Red)
	fmt.Fprintf(&b, "Blue Balls: %d\n", e.stats.Blue)
	fmt.Fprintf(&b, "Ejected: %d\n", e.stats.Ejected)
	fmt.Fprintf(&b, "False Detections: %d\n", e.stats.Conflicts)
	return b.String()
}

// SensorReading is one raw sample from TestSensors.
type SensorReading struct {
	Proximity  float64
	Hue        float64
	Saturation float64
	Brightness float64
}

// TestSensors reads every channel of both sensors.
func (e *Ejector) TestSensors() ([2]SensorReading, error) {
	var out [2]SensorReading
	for i, s := range e.sensors {
		if s.dev == nil {
			return out, fmt.Errorf("%w: sensor %d missing", ErrNotFunctional, i+1)
		}
		var err error
		r := &out[i]
		if r.Proximity, err = s.dev.Proximity(); err != nil {
			return out, fmt.Errorf("sensor %d proximity: %w", i+1, err)
		}
		if r.Hue, err = s.dev.Hue(); err != nil {
			return out, fmt.Errorf("sensor %d hue: %w", i+1, err)
		}
		if r.Saturation, err = s.dev.Saturation(); err != nil {
			return out, fmt.Errorf("sensor %d saturation: %w", i+1, err)
		}
		if r.Brightness, err = s.dev.Brightness(); err != nil {
			return out, fmt.Errorf("sensor %d brightness: %w", i+1, err)
		}
	}
	return out, nil
}
