package operator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/ballroute/internal/ejection"
	"github.com/CodexForgeBR/ballroute/internal/scoring"
	"github.com/CodexForgeBR/ballroute/internal/sim"
)

type fixture struct {
	robot    *sim.Robot
	coord    *scoring.Coordinator
	ej       *ejection.Ejector
	bindings *Bindings
	edges    EdgeDetector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r := sim.NewRobot()
	c, err := scoring.NewCoordinator(scoring.Hardware{
		Intake:   r.Intake,
		Top:      r.Top,
		Left:     r.Left,
		Right:    r.Right,
		Flap:     r.Flap,
		PTO:      r.PTO,
		Feedback: r.Screen,
		Clock:    r.Clock,
	})
	require.NoError(t, err)
	e := ejection.New(r.Sensor1, r.Sensor2, ejection.DefaultSettings(), r.Clock, r.Screen)
	require.NoError(t, e.Initialize(c))
	return &fixture{robot: r, coord: c, ej: e, bindings: NewBindings(c, e, r.Screen)}
}

// press sends one poll with held down, then one poll with nothing down.
func (f *fixture) press(held ...Action) bool {
	handled := f.bindings.Apply(f.edges.Update(NewInput(held...)))
	f.bindings.Apply(f.edges.Update(NewInput()))
	return handled
}

func TestParseAction(t *testing.T) {
	for _, name := range ActionNames() {
		a, err := ParseAction(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, a.String())
	}

	a, err := ParseAction("  Mid_Goal ")
	require.NoError(t, err)
	assert.Equal(t, ActionMidGoal, a)

	_, err = ParseAction("jump")
	assert.ErrorContains(t, err, "unknown action")
	assert.Equal(t, "action(99)", Action(99).String())
}

func TestEdgeDetector(t *testing.T) {
	var d EdgeDetector

	e := d.Update(NewInput(ActionMidGoal))
	assert.True(t, e.Rising(ActionMidGoal))
	assert.True(t, e.IsHeld(ActionMidGoal))

	e = d.Update(NewInput(ActionMidGoal, ActionExecuteBack))
	assert.False(t, e.Rising(ActionMidGoal), "held button must not re-fire")
	assert.True(t, e.Rising(ActionExecuteBack))

	e = d.Update(NewInput())
	assert.False(t, e.Any())

	e = d.Update(NewInput(ActionMidGoal))
	assert.True(t, e.Rising(ActionMidGoal), "release and press fires again")
}

func TestEdgeDetector_Sticks(t *testing.T) {
	var d EdgeDetector

	in := NewInput()
	in.LeftX = -StickThreshold
	assert.False(t, d.Update(in).StickRed, "threshold itself is not past it")

	in.LeftX = -80
	assert.True(t, d.Update(in).StickRed)
	assert.False(t, d.Update(in).StickRed, "holding the stick fires once")

	in = NewInput()
	in.RightX = 90
	e := d.Update(in)
	assert.True(t, e.StickBlue)
	assert.False(t, e.StickRed)
}

func TestBindings_ModeButtonsCycleStorage(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.press(ActionMidGoal))
	assert.Equal(t, scoring.ModeMidGoal, f.coord.Mode())
	assert.Equal(t, scoring.DirectionStorage, f.coord.Direction())

	f.press(ActionMidGoal)
	assert.False(t, f.coord.IsActive())

	f.press(ActionTopGoal)
	assert.Equal(t, scoring.ModeTopGoal, f.coord.Mode())
	assert.True(t, f.coord.IsActive())
}

func TestBindings_ExecuteButtons(t *testing.T) {
	f := newFixture(t)

	f.press(ActionExecuteBack)
	assert.False(t, f.coord.IsActive(), "no mode selected")
	assert.Equal(t, "Need Mode", f.robot.Screen.Lines[1])

	f.press(ActionMidGoal)
	f.press(ActionExecuteBack)
	assert.Equal(t, scoring.DirectionBack, f.coord.Direction())

	f.press(ActionExecuteFront)
	assert.Equal(t, scoring.DirectionFront, f.coord.Direction())

	f.press(ActionExecuteFront)
	assert.Equal(t, scoring.DirectionStorage, f.coord.Direction())
}

func TestBindings_StorageComboAdjustsCount(t *testing.T) {
	f := newFixture(t)

	// Holding the toggle and pressing back adds a ball instead of executing.
	f.bindings.Apply(f.edges.Update(NewInput(ActionStorageToggle)))
	assert.True(t, f.coord.StorageRoutingEnabled())
	f.bindings.Apply(f.edges.Update(NewInput(ActionStorageToggle, ActionExecuteBack)))
	f.bindings.Apply(f.edges.Update(NewInput(ActionStorageToggle)))
	f.bindings.Apply(f.edges.Update(NewInput(ActionStorageToggle, ActionExecuteBack)))
	assert.Equal(t, 2, f.coord.StorageCount())
	assert.Equal(t, "Ball Added: 2/3", f.robot.Screen.Lines[1])
	assert.False(t, f.coord.IsActive())

	f.bindings.Apply(f.edges.Update(NewInput(ActionStorageToggle, ActionExecuteBack)))
	assert.Equal(t, 2, f.coord.StorageCount(), "held buttons do not repeat")

	f.bindings.Apply(f.edges.Update(NewInput(ActionStorageToggle)))
	f.bindings.Apply(f.edges.Update(NewInput(ActionStorageToggle, ActionExecuteFront)))
	assert.Equal(t, 1, f.coord.StorageCount())
	assert.Equal(t, "Ball Removed: 1/3", f.robot.Screen.Lines[1])
}

func TestBindings_StorageComboLimits(t *testing.T) {
	f := newFixture(t)

	f.press(ActionStorageToggle, ActionExecuteFront)
	assert.Equal(t, 0, f.coord.StorageCount())
	assert.Equal(t, "Storage Empty!", f.robot.Screen.Lines[1])

	for i := 0; i < scoring.MaxStorage+1; i++ {
		f.press(ActionStorageToggle, ActionExecuteBack)
	}
	assert.Equal(t, scoring.MaxStorage, f.coord.StorageCount())
	assert.Equal(t, "Storage Full!", f.robot.Screen.Lines[1])
}

func TestBindings_FlapAndRouting(t *testing.T) {
	f := newFixture(t)

	f.press(ActionFlapToggle)
	assert.True(t, f.coord.FlapOpen())
	f.press(ActionFlapToggle)
	assert.False(t, f.coord.FlapOpen())

	f.press(ActionStorageToggle)
	assert.True(t, f.coord.StorageRoutingEnabled())
	assert.Equal(t, "STORAGE: ON", f.robot.Screen.Lines[2])
}

func TestBindings_SortingControls(t *testing.T) {
	f := newFixture(t)

	in := NewInput()
	in.RightX = 100
	f.bindings.Apply(f.edges.Update(in))
	assert.Equal(t, ejection.CollectBlue, f.ej.SortingPolicy())
	assert.Equal(t, "SORT: BLUE", f.robot.Screen.Lines[2])

	in = NewInput()
	in.LeftX = -100
	f.bindings.Apply(f.edges.Update(in))
	assert.Equal(t, ejection.CollectRed, f.ej.SortingPolicy())

	f.press(ActionSortToggle)
	assert.Equal(t, ejection.CollectAll, f.ej.SortingPolicy())
	f.press(ActionSortToggle)
	assert.Equal(t, ejection.CollectRed, f.ej.SortingPolicy())
}

func TestBindings_EjectionDuration(t *testing.T) {
	f := newFixture(t)
	start := f.ej.EjectionDuration()

	f.press(ActionEjectLonger)
	assert.Equal(t, start+EjectStep, f.ej.EjectionDuration())
	assert.Equal(t, "EJECT: 350ms", f.robot.Screen.Lines[2])

	for i := 0; i < 20; i++ {
		f.press(ActionEjectShorter)
	}
	assert.Equal(t, ejection.MinEjectDuration, f.ej.EjectionDuration())

	for i := 0; i < 100; i++ {
		f.press(ActionEjectLonger)
	}
	assert.Equal(t, ejection.MaxEjectDuration, f.ej.EjectionDuration())
	assert.Equal(t, 2*time.Second, f.ej.EjectionDuration())
}

func TestBindings_ManualEject(t *testing.T) {
	f := newFixture(t)

	f.press(ActionMidGoal)
	f.press(ActionManualEject)
	assert.True(t, f.ej.Active())
	assert.Equal(t, scoring.DirectionBack, f.coord.Direction())
	assert.True(t, f.ej.SavedSnapshot().Valid)
}

func TestBindings_NilSorter(t *testing.T) {
	f := newFixture(t)
	b := NewBindings(f.coord, nil, nil)
	var d EdgeDetector

	in := NewInput(ActionManualEject, ActionSortToggle)
	in.LeftX = -100
	assert.False(t, b.Apply(d.Update(in)))
	assert.Equal(t, ejection.CollectAll, f.ej.SortingPolicy())
	assert.False(t, f.ej.Active())
}
