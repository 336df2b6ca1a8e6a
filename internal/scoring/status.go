package scoring

import (
	"fmt"
	"time"
)

// Status is a point-in-time view of the coordinator.
type Status struct {
	Mode           ScoringMode        `json:"mode"`
	Direction      ExecutionDirection `json:"direction"`
	Active         bool               `json:"active"`
	InputRunning   bool               `json:"input_running"`
	Elapsed        time.Duration      `json:"elapsed_ns"`
	StorageCount   int                `json:"storage_count"`
	StorageRouting bool               `json:"storage_routing"`
	FlapOpen       bool               `json:"flap_open"`
}

// Status returns the current state.
func (c *Coordinator) Status() Status {
	return Status{
		Mode:           c.mode,
		Direction:      c.direction,
		Active:         c.active,
		InputRunning:   c.inputRunning,
		Elapsed:        c.Elapsed(),
		StorageCount:   c.storageCount,
		StorageRouting: c.storageRouting,
		FlapOpen:       c.flapOpen,
	}
}

// FlowStatus returns a one-line summary such as "IDLE - Mode: MID GOAL" or
// "ACTIVE - BACK MID GOAL (120ms)".
func (c *Coordinator) FlowStatus() string {
	if !c.active {
		return fmt.Sprintf("IDLE - Mode: %s", c.mode)
	}
	return fmt.Sprintf("ACTIVE - %s %s (%dms)", c.direction, c.mode, c.Elapsed().Milliseconds())
}
