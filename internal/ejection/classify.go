package ejection

import (
	"github.com/CodexForgeBR/ballroute/internal/hardware"
	"github.com/CodexForgeBR/ballroute/internal/logging"
)

// Present reports whether a ball occupies the sensor. A reading at or above
// the threshold, or a failed read, means no ball.
func Present(s hardware.OpticalSensor, threshold float64) bool {
	prox, err := s.Proximity()
	if err != nil {
		return false
	}
	return prox < threshold
}

// Classify reads one sample. Absence wins over any color reading, and any
// read failure yields UNKNOWN.
func Classify(s hardware.OpticalSensor, cfg Settings) BallColor {
	prox, err := s.Proximity()
	if err != nil {
		logging.Debugf("proximity read failed: %v", err)
		return ColorUnknown
	}
	if prox >= cfg.ProximityThreshold {
		return ColorNoBall
	}

	hue, err := s.Hue()
	if err != nil {
		logging.Debugf("hue read failed: %v", err)
		return ColorUnknown
	}
	sat, err := s.Saturation()
	if err != nil {
		logging.Debugf("saturation read failed: %v", err)
		return ColorUnknown
	}
	bright, err := s.Brightness()
	if err != nil {
		logging.Debugf("brightness read failed: %v", err)
		return ColorUnknown
	}
	return ColorFromHSV(hue, sat, bright, cfg)
}

// ColorFromHSV maps a hue in [0,360) to RED or BLUE when saturation and
// brightness clear their minimums.
func ColorFromHSV(hue, sat, bright float64, cfg Settings) BallColor {
	if sat < cfg.MinSaturation || bright < cfg.MinBrightness {
		return ColorUnknown
	}
	switch {
	case hue >= 0 && hue <= cfg.RedHueMax, hue >= cfg.RedHueHighMin && hue < 360:
		return ColorRed
	case hue >= cfg.BlueHueMin && hue <= cfg.BlueHueMax:
		return ColorBlue
	default:
		return ColorUnknown
	}
}

// confirmationBuffer holds the last N raw classifications of one sensor.
type confirmationBuffer struct {
	slots []BallColor
	next  int
}

func newConfirmationBuffer(n int) *confirmationBuffer {
	if n < 1 {
		n = 1
	}
	b := &confirmationBuffer{slots: make([]BallColor, n)}
	b.reset()
	return b
}

// push records c and returns it if every slot now agrees on a ball color,
// otherwise UNKNOWN.
func (b *confirmationBuffer) push(c BallColor) BallColor {
	b.slots[b.next] = c
	b.next = (b.next + 1) % len(b.slots)
	if !c.IsBall() {
		return ColorUnknown
	}
	for _, s := range b.slots {
		if s != c {
			return ColorUnknown
		}
	}
	return c
}

func (b *confirmationBuffer) reset() {
	for i := range b.slots {
		b.slots[i] = ColorNoBall
	}
	b.next = 0
}
