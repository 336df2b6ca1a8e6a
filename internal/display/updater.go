package display

import (
	"time"

	"github.com/CodexForgeBR/ballroute/internal/hardware"
	"github.com/CodexForgeBR/ballroute/internal/scoring"
)

// RefreshInterval is the minimum time between unforced redraws.
const RefreshInterval = 200 * time.Millisecond

// Updater pushes rendered screens to a feedback sink, skipping lines that
// have not changed since they were last drawn.
type Updater struct {
	sink     hardware.Feedback
	last     Lines
	lastDraw time.Time
	force    bool
	draws    int
}

// NewUpdater returns an updater whose first Update always draws.
func NewUpdater(sink hardware.Feedback) *Updater {
	if sink == nil {
		sink = hardware.NopFeedback{}
	}
	return &Updater{sink: sink, force: true}
}

// Force makes the next Update redraw every line regardless of throttling.
func (u *Updater) Force() { u.force = true }

// Draws counts the screens actually pushed.
func (u *Updater) Draws() int { return u.draws }

// Update renders st and pushes changed lines if the refresh interval has
// passed or a redraw was forced. It reports whether anything was drawn.
func (u *Updater) Update(st scoring.Status, now time.Time) bool {
	if !u.sink.Connected() {
		return false
	}
	if !u.force && !u.lastDraw.IsZero() && now.Sub(u.lastDraw) < RefreshInterval {
		return false
	}

	lines := Render(st)
	for i, text := range lines {
		if u.force || text != u.last[i] {
			u.sink.Print(i, text)
		}
	}
	u.last = lines
	u.lastDraw = now
	u.force = false
	u.draws++
	return true
}
