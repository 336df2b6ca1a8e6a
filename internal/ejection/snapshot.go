package ejection

import (
	"fmt"

	"github.com/CodexForgeBR/ballroute/internal/scoring"
)

// Snapshot is the coordinator state captured before an ejection.
type Snapshot struct {
	Valid           bool                       `json:"valid"`
	WasActive       bool                       `json:"was_active"`
	WasInputRunning bool                       `json:"was_input_running"`
	WasPushing      bool                       `json:"was_pushing"`
	Mode            scoring.ScoringMode        `json:"mode"`
	Direction       scoring.ExecutionDirection `json:"direction"`
}

func capture(c Coordinator) Snapshot {
	return Snapshot{
		Valid:           true,
		WasActive:       c.IsActive(),
		WasInputRunning: c.IsInputRunning(),
		WasPushing:      c.IsPushing(),
		Mode:            c.Mode(),
		Direction:       c.Direction(),
	}
}

// resumption is the closed set of ways a coordinator can be put back.
type resumption interface {
	resume(c Coordinator) error
	String() string
}

type (
	resumeFront   struct{ mode scoring.ScoringMode }
	resumeBack    struct{ mode scoring.ScoringMode }
	resumeStorage struct{ mode scoring.ScoringMode }
	resumeIntake  struct{ mode scoring.ScoringMode }
	resumeIdle    struct{ mode scoring.ScoringMode }
)

type resumePush struct {
	mode  scoring.ScoringMode
	front bool
}

func (r resumeFront) resume(c Coordinator) error {
	c.SetMode(r.mode)
	return c.ExecuteFront()
}

func (r resumeBack) resume(c Coordinator) error {
	c.SetMode(r.mode)
	return c.ExecuteBack()
}

func (r resumeStorage) resume(c Coordinator) error {
	c.SetMode(r.mode)
	return c.StartIntakeAndStorage()
}

func (r resumeIntake) resume(c Coordinator) error {
	c.SetMode(r.mode)
	c.StartIntake()
	return nil
}

func (r resumeIdle) resume(c Coordinator) error {
	c.SetMode(r.mode)
	return nil
}

func (r resumePush) resume(c Coordinator) error {
	c.SetMode(r.mode)
	if r.front {
		return c.PushFront()
	}
	return c.PushBack()
}

func (r resumeFront) String() string   { return "FRONT " + r.mode.String() }
func (r resumeBack) String() string    { return "BACK " + r.mode.String() }
func (r resumeStorage) String() string { return "STORAGE " + r.mode.String() }
func (r resumeIntake) String() string  { return "INTAKE " + r.mode.String() }
func (r resumeIdle) String() string    { return "IDLE " + r.mode.String() }

func (r resumePush) String() string {
	if r.front {
		return "PUSH FORWARD " + r.mode.String()
	}
	return "PUSH BACKWARD " + r.mode.String()
}

// plan turns the snapshot of a running coordinator into the sequence that
// replays it.
func (s Snapshot) plan() (resumption, error) {
	if !s.Mode.Valid() {
		return nil, fmt.Errorf("unrecognized saved mode %d", int(s.Mode))
	}
	switch s.Direction {
	case scoring.DirectionFront:
		if s.WasPushing {
			return resumePush{mode: s.Mode, front: true}, nil
		}
		return resumeFront{s.Mode}, nil
	case scoring.DirectionBack:
		if s.WasPushing {
			return resumePush{mode: s.Mode, front: false}, nil
		}
		return resumeBack{s.Mode}, nil
	case scoring.DirectionStorage:
		return resumeStorage{s.Mode}, nil
	case scoring.DirectionNone:
		if s.WasInputRunning {
			return resumeIntake{s.Mode}, nil
		}
		return resumeIdle{s.Mode}, nil
	default:
		return nil, fmt.Errorf("unrecognized saved direction %d", int(s.Direction))
	}
}
