package scenario

import (
	"time"

	"github.com/CodexForgeBR/ballroute/internal/logging"
	"github.com/CodexForgeBR/ballroute/internal/operator"
	"github.com/CodexForgeBR/ballroute/internal/sim"
)

type hold struct {
	until  time.Duration
	polled bool
}

// Player replays a scenario against a simulated robot. Each Poll applies
// every step that has come due on the robot clock and returns the operator
// input for that instant.
type Player struct {
	sc    *Scenario
	robot *sim.Robot
	next  int
	holds map[operator.Action]*hold
	left  int
	right int
}

var _ operator.Source = (*Player)(nil)

// NewPlayer returns a player positioned at the start of sc.
func NewPlayer(sc *Scenario, robot *sim.Robot) *Player {
	return &Player{sc: sc, robot: robot, holds: map[operator.Action]*hold{}}
}

// Poll implements operator.Source.
func (p *Player) Poll() operator.Input {
	now := p.robot.Clock.Elapsed()
	for p.next < len(p.sc.Steps) && time.Duration(p.sc.Steps[p.next].AtMS)*time.Millisecond <= now {
		p.apply(p.sc.Steps[p.next])
		p.next++
	}

	in := operator.NewInput()
	for a, h := range p.holds {
		if h.polled && now >= h.until {
			delete(p.holds, a)
			continue
		}
		h.polled = true
		in.Held[a] = true
	}
	in.LeftX, in.RightX = p.left, p.right
	return in
}

func (p *Player) apply(st Step) {
	logging.Debugf("scenario step at %dms", st.AtMS)

	at := time.Duration(st.AtMS) * time.Millisecond
	for _, name := range st.Press {
		a, err := operator.ParseAction(name)
		if err != nil {
			continue
		}
		p.holds[a] = &hold{until: at + time.Duration(st.HoldMS)*time.Millisecond}
	}
	if st.LeftX != nil {
		p.left = *st.LeftX
	}
	if st.RightX != nil {
		p.right = *st.RightX
	}

	if st.Sensor1 != nil {
		setSensor(p.robot.Sensor1, *st.Sensor1)
	}
	if st.Sensor2 != nil {
		setSensor(p.robot.Sensor2, *st.Sensor2)
	}
	for _, name := range st.Clear {
		p.sensor(name).Clear()
	}
	for _, name := range st.Fail {
		p.sensor(name).Fail(nil)
	}
}

func (p *Player) sensor(name string) *sim.OpticalSensor {
	if name == Sensor2 {
		return p.robot.Sensor2
	}
	return p.robot.Sensor1
}

func setSensor(s *sim.OpticalSensor, in SensorInput) {
	r, err := in.Resolve()
	if err != nil {
		return
	}
	s.Set(r)
}

// Done reports whether every step has been applied and the scenario
// duration has passed.
func (p *Player) Done() bool {
	return p.next >= len(p.sc.Steps) && p.robot.Clock.Elapsed() >= p.sc.Duration()
}

// Applied is the number of steps applied so far.
func (p *Player) Applied() int { return p.next }
