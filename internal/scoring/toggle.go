package scoring

import (
	"github.com/CodexForgeBR/ballroute/internal/hardware"
	"github.com/CodexForgeBR/ballroute/internal/logging"
)

// SelectStorage is the mode-button transition. Pressing the button of the
// running (mode, STORAGE) pair stops it and reports stopped. Any other press
// selects mode and starts storage routing.
func (c *Coordinator) SelectStorage(mode ScoringMode) (stopped bool, err error) {
	if c.active && c.mode == mode && c.direction == DirectionStorage {
		logging.Infof("%s storage stopped", mode)
		c.StopAll()
		hardware.Notify(c.hw.Feedback, lineStatus, "STOPPED", "--")
		return true, nil
	}
	c.SetMode(mode)
	if err := c.StartIntakeAndStorage(); err != nil {
		return false, err
	}
	hardware.Notify(c.hw.Feedback, lineStatus, mode.String()+" STORAGE", ".")
	return false, nil
}

// RequestFront is the front execute button.
func (c *Coordinator) RequestFront() error {
	return c.request(DirectionFront)
}

// RequestBack is the back execute button.
func (c *Coordinator) RequestBack() error {
	return c.request(DirectionBack)
}

// request cycles STORAGE and dir for the held mode. Pressing while already
// running dir returns to storage routing; pressing while running the other
// direction switches straight to dir. COLLECTION runs push sequences.
func (c *Coordinator) request(dir ExecutionDirection) error {
	if c.mode == ModeNone {
		logging.Warnf("%s pressed with no mode selected", dir)
		hardware.Notify(c.hw.Feedback, lineStatus, "Need Mode", "---")
		return ErrNoMode
	}

	if c.active && c.direction == dir {
		logging.Infof("%s pressed again, back to storage (%s)", dir, c.mode)
		c.StopAll()
		c.hw.Clock.Sleep(ToggleSettle)
		if err := c.StartIntakeAndStorage(); err != nil {
			return err
		}
		hardware.Notify(c.hw.Feedback, lineStatus, "", ".-")
		return nil
	}

	if c.active {
		c.StopAll()
		c.hw.Clock.Sleep(ToggleSettle)
	}
	if c.mode == ModeCollection {
		return c.push(dir)
	}
	if err := c.execute(dir); err != nil {
		return err
	}
	hardware.Notify(c.hw.Feedback, lineStatus, "", "..")
	return nil
}
