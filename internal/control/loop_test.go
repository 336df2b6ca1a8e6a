package control

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/ballroute/internal/display"
	"github.com/CodexForgeBR/ballroute/internal/ejection"
	"github.com/CodexForgeBR/ballroute/internal/operator"
	"github.com/CodexForgeBR/ballroute/internal/scenario"
	"github.com/CodexForgeBR/ballroute/internal/scoring"
	"github.com/CodexForgeBR/ballroute/internal/sim"
)

type harness struct {
	loop   *Loop
	rig    *Rig
	player *scenario.Player
}

func newHarness(t *testing.T, doc string) *harness {
	t.Helper()
	sc, err := scenario.Parse([]byte(doc))
	require.NoError(t, err)

	settings := ejection.DefaultSettings()
	if p, ok := sc.Policy(); ok {
		settings.Policy = p
	}

	robot := sim.NewRobot()
	rig, err := NewRig(robot, settings, nil)
	require.NoError(t, err)
	require.NoError(t, rig.EjectorErr)

	player := scenario.NewPlayer(sc, robot)
	loop, err := NewLoop(Loop{
		Coord:    rig.Coord,
		Ejector:  rig.Ejector,
		Source:   player,
		Bindings: rig.Bindings,
		Clock:    robot.Clock,
		Pacer:    SimPacer{Clock: robot.Clock, Tick: sc.Tick()},
		Display:  display.NewUpdater(robot.Screen),
		Until:    player.Done,
	})
	require.NoError(t, err)
	return &harness{loop: loop, rig: rig, player: player}
}

const autoEject = `
name: blue passes the sensors
duration_ms: 1500
sorting: collect_red
steps:
  - at_ms: 100
    sensor1: {ball: blue}
    sensor2: {ball: blue}
  - at_ms: 300
    clear: [sensor1, sensor2]
`

func TestLoop_AutomaticEjection(t *testing.T) {
	h := newHarness(t, autoEject)
	robot := h.rig.Robot

	var during [4]int
	ejecting := 0
	h.loop.AfterTick = func() error {
		if h.rig.Ejector.Active() {
			ejecting++
			during = robot.Velocities()
		}
		return nil
	}

	require.NoError(t, h.loop.Run(context.Background()))

	assert.Positive(t, ejecting)
	assert.Equal(t, [4]int{scoring.IntakeSpeed, 0, -550, 500}, during, "ejection drives MID GOAL back")

	stats := h.rig.Ejector.Statistics()
	assert.Equal(t, 1, stats.Blue)
	assert.Equal(t, 0, stats.Red)
	assert.Equal(t, 1, stats.Ejected)

	assert.False(t, h.rig.Ejector.Active())
	assert.False(t, h.rig.Coord.IsActive())
	assert.Equal(t, scoring.ModeMidGoal, h.rig.Coord.Mode(), "idle coordinator is not restored")
	assert.Equal(t, [4]int{}, robot.Velocities())
	assert.True(t, h.player.Done())
}

func TestLoop_CollectAllKeepsBalls(t *testing.T) {
	doc := `
name: keep everything
duration_ms: 1000
steps:
  - at_ms: 100
    sensor1: {ball: red}
    sensor2: {ball: red}
  - at_ms: 300
    clear: [sensor1, sensor2]
`
	h := newHarness(t, doc)
	require.NoError(t, h.loop.Run(context.Background()))

	stats := h.rig.Ejector.Statistics()
	assert.Equal(t, 1, stats.Red)
	assert.Equal(t, 0, stats.Ejected)
}

func TestLoop_ManualEjectionRestoresStorage(t *testing.T) {
	doc := `
name: manual eject during storage
duration_ms: 2000
steps:
  - at_ms: 0
    press: [mid_goal]
  - at_ms: 200
    press: [eject]
`
	h := newHarness(t, doc)
	coord := h.rig.Coord

	sawEject := false
	h.loop.AfterTick = func() error {
		if h.rig.Ejector.Active() {
			sawEject = true
			assert.Equal(t, scoring.DirectionBack, coord.Direction())
		}
		return nil
	}

	require.NoError(t, h.loop.RunTicks(context.Background(), 60))

	assert.True(t, sawEject)
	assert.False(t, h.rig.Ejector.Active())
	assert.True(t, coord.IsActive())
	assert.Equal(t, scoring.ModeMidGoal, coord.Mode())
	assert.Equal(t, scoring.DirectionStorage, coord.Direction())
	assert.Equal(t, 1, h.rig.Ejector.Statistics().Ejected)
	assert.Equal(t, "-M-- - SHUT *", h.rig.Robot.Screen.Lines[0])
}

func TestLoop_SequenceTimeout(t *testing.T) {
	doc := `
name: top goal runs too long
duration_ms: 6000
steps:
  - at_ms: 0
    press: [top_goal]
  - at_ms: 100
    press: [back]
`
	h := newHarness(t, doc)
	coord := h.rig.Coord

	require.NoError(t, h.loop.RunTicks(context.Background(), 10))
	require.True(t, coord.IsActive())
	require.Equal(t, scoring.DirectionBack, coord.Direction())

	require.NoError(t, h.loop.RunTicks(context.Background(), 290))
	assert.False(t, coord.IsActive())
	assert.Equal(t, scoring.ModeTopGoal, coord.Mode(), "timeout keeps the mode")
	assert.Contains(t, h.rig.Robot.Screen.Prints, "2:TIMEOUT STOP")
	assert.Equal(t, [4]int{}, h.rig.Robot.Velocities())
}

func TestLoop_CancelStopsMotors(t *testing.T) {
	doc := `
name: storage then cancel
duration_ms: 5000
steps:
  - at_ms: 0
    press: [collection]
`
	h := newHarness(t, doc)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.loop.AfterTick = func() error {
		if h.loop.Ticks() == 3 {
			require.True(t, h.rig.Coord.IsActive())
			cancel()
		}
		return nil
	}

	err := h.loop.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, h.loop.Ticks())
	assert.False(t, h.rig.Coord.IsActive())
	assert.Equal(t, [4]int{}, h.rig.Robot.Velocities())
}

func TestNewLoop_Incomplete(t *testing.T) {
	robot := sim.NewRobot()
	rig, err := NewRig(robot, ejection.DefaultSettings(), nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		loop Loop
		want string
	}{
		{"no coordinator", Loop{}, "coordinator"},
		{"no source", Loop{Coord: rig.Coord}, "input source"},
		{"no bindings", Loop{Coord: rig.Coord, Source: staticSource{}}, "bindings"},
		{"no pacer", Loop{Coord: rig.Coord, Source: staticSource{}, Bindings: rig.Bindings}, "pacer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoop(tt.loop)
			assert.ErrorIs(t, err, ErrIncomplete)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

type staticSource struct{ in operator.Input }

func (s staticSource) Poll() operator.Input { return s.in }

func TestLoop_StepWithoutEjectorOrDisplay(t *testing.T) {
	robot := sim.NewRobot()
	rig, err := NewRig(robot, ejection.DefaultSettings(), nil)
	require.NoError(t, err)

	loop, err := NewLoop(Loop{
		Coord:    rig.Coord,
		Source:   staticSource{in: operator.NewInput(operator.ActionLowGoal)},
		Bindings: rig.Bindings,
		Pacer:    SimPacer{Clock: robot.Clock, Tick: 20 * time.Millisecond},
	})
	require.NoError(t, err)

	require.NoError(t, loop.Step())
	require.NoError(t, loop.Step())
	assert.Equal(t, 2, loop.Ticks())
	assert.Equal(t, scoring.ModeLowGoal, rig.Coord.Mode())
	assert.Equal(t, scoring.DirectionStorage, rig.Coord.Direction(), "held button fires once")
}

func TestNewRig_SensorFailureDisablesSorting(t *testing.T) {
	robot := sim.NewRobot()
	robot.Sensor2.Fail(nil)

	rig, err := NewRig(robot, ejection.DefaultSettings(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, rig.EjectorErr, ejection.ErrNotFunctional)
	assert.False(t, rig.Ejector.Functional())

	_, err = rig.Coord.SelectStorage(scoring.ModeMidGoal)
	assert.NoError(t, err, "routing works without sorting")
}

func TestHardware_DefaultsToRobotScreen(t *testing.T) {
	robot := sim.NewRobot()
	hw := Hardware(robot, nil)
	assert.Same(t, robot.Screen, hw.Feedback)

	sink := display.NewConsoleSink(nil)
	assert.Same(t, sink, Hardware(robot, sink).Feedback)
}

func TestPacers(t *testing.T) {
	clock := sim.NewClock()
	sp := SimPacer{Clock: clock, Tick: 20 * time.Millisecond}
	require.NoError(t, sp.Wait(context.Background()))
	assert.Equal(t, 20*time.Millisecond, clock.Elapsed())

	rp := NewRealtimePacer(time.Millisecond, sp)
	defer rp.Stop()
	require.NoError(t, rp.Wait(context.Background()))
	assert.Equal(t, 40*time.Millisecond, clock.Elapsed())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, rp.Wait(ctx), context.Canceled)
	assert.ErrorIs(t, sp.Wait(ctx), context.Canceled)
	assert.Equal(t, 40*time.Millisecond, clock.Elapsed())
}
