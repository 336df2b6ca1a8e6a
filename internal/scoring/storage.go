package scoring

import (
	"fmt"

	"github.com/CodexForgeBR/ballroute/internal/hardware"
	"github.com/CodexForgeBR/ballroute/internal/logging"
)

// StorageCount returns the number of balls held.
func (c *Coordinator) StorageCount() int { return c.storageCount }

// IsStorageFull reports whether the store is at capacity.
func (c *Coordinator) IsStorageFull() bool { return c.storageCount >= MaxStorage }

// AddBallToStorage increments the count. It returns false without changing
// anything when the store is full.
func (c *Coordinator) AddBallToStorage() bool {
	if c.IsStorageFull() {
		logging.Warnf("cannot add ball, storage at capacity (%d/%d)", c.storageCount, MaxStorage)
		return false
	}
	c.storageCount++
	c.announceStorage()
	return true
}

// RemoveBallFromStorage decrements the count. It returns false without
// changing anything when the store is empty.
func (c *Coordinator) RemoveBallFromStorage() bool {
	if c.storageCount <= 0 {
		logging.Warn("cannot remove ball, storage empty")
		return false
	}
	c.storageCount--
	c.announceStorage()
	return true
}

// ResetStorageBallCount forces the count to zero.
func (c *Coordinator) ResetStorageBallCount() {
	c.storageCount = 0
	c.announceStorage()
}

func (c *Coordinator) announceStorage() {
	logging.Debugf("storage count %d/%d", c.storageCount, MaxStorage)
	hardware.Notify(c.hw.Feedback, lineStorage, fmt.Sprintf("Storage: %d/%d", c.storageCount, MaxStorage), "")
}

// ToggleStorageRouting flips whether scoring pulls from storage instead of
// the direct feed.
func (c *Coordinator) ToggleStorageRouting() {
	c.storageRouting = !c.storageRouting
	logging.Infof("storage routing %s", onOff(c.storageRouting))
}

// StorageRoutingEnabled reports whether scoring pulls from storage.
func (c *Coordinator) StorageRoutingEnabled() bool { return c.storageRouting }

// OpenFlap lets balls leave through the front.
func (c *Coordinator) OpenFlap() {
	c.hw.Flap.SetState(hardware.FlapOpen)
	c.flapOpen = true
}

// CloseFlap holds balls against the front flap.
func (c *Coordinator) CloseFlap() {
	c.hw.Flap.SetState(hardware.FlapClosed)
	c.flapOpen = false
}

// ToggleFlap flips the flap.
func (c *Coordinator) ToggleFlap() {
	if c.flapOpen {
		c.CloseFlap()
	} else {
		c.OpenFlap()
	}
	logging.Debugf("flap open=%t", c.flapOpen)
}

// FlapOpen reports the tracked flap state.
func (c *Coordinator) FlapOpen() bool { return c.flapOpen }

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
