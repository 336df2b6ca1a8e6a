// Package display renders coordinator state onto the three-line controller
// screen and throttles how often it is redrawn.
package display

import (
	"fmt"
	"strings"

	"github.com/CodexForgeBR/ballroute/internal/scoring"
)

// Width is the number of columns on one controller screen line.
const Width = 16

// Lines is one full screen.
type Lines [3]string

var modeGlyphs = []struct {
	mode  scoring.ScoringMode
	glyph string
}{
	{scoring.ModeCollection, "C"},
	{scoring.ModeMidGoal, "M"},
	{scoring.ModeLowGoal, "L"},
	{scoring.ModeTopGoal, "T"},
}

// Render lays out st as three screen lines:
//
//	-M-- S SHUT  *      mode buttons, storage routing, flap, activity
//	Fo B* ##- <         execute indicators, storage fill, direction
//	MID 1.2s *          mode name, runtime or READY, activity
func Render(st scoring.Status) Lines {
	var l Lines

	var modes strings.Builder
	for _, g := range modeGlyphs {
		if st.Mode == g.mode {
			modes.WriteString(g.glyph)
		} else {
			modes.WriteString("-")
		}
	}
	routing := "-"
	if st.StorageRouting {
		routing = "S"
	}
	flap := "SHUT"
	if st.FlapOpen {
		flap = "OPEN"
	}
	l[0] = fmt.Sprintf("%s %s %s %s", modes.String(), routing, flap, activity(st))

	l[1] = fmt.Sprintf("F%s B%s %s %s",
		lamp(st.Active && st.Direction == scoring.DirectionFront),
		lamp(st.Active && st.Direction == scoring.DirectionBack),
		StorageVisual(st.StorageCount),
		DirectionSymbol(st.Direction))

	if st.Active {
		l[2] = fmt.Sprintf("%s %.1fs %s", ShortMode(st.Mode), st.Elapsed.Seconds(), activity(st))
	} else {
		l[2] = fmt.Sprintf("%s READY %s", ShortMode(st.Mode), activity(st))
	}

	for i := range l {
		l[i] = fit(l[i])
	}
	return l
}

// StorageVisual draws the storage fill, one cell per slot.
func StorageVisual(count int) string {
	if count < 0 || count > scoring.MaxStorage {
		return strings.Repeat("?", scoring.MaxStorage)
	}
	return strings.Repeat("#", count) + strings.Repeat("-", scoring.MaxStorage-count)
}

// DirectionSymbol is the arrow shown for an execution direction.
func DirectionSymbol(d scoring.ExecutionDirection) string {
	switch d {
	case scoring.DirectionFront:
		return ">"
	case scoring.DirectionBack:
		return "<"
	case scoring.DirectionStorage:
		return "v"
	default:
		return "-"
	}
}

// ShortMode is the mode name abbreviated for the screen.
func ShortMode(m scoring.ScoringMode) string {
	switch m {
	case scoring.ModeCollection:
		return "COLLECT"
	case scoring.ModeMidGoal:
		return "MID"
	case scoring.ModeLowGoal:
		return "LOW"
	case scoring.ModeTopGoal:
		return "TOP"
	default:
		return "NONE"
	}
}

func lamp(on bool) string {
	if on {
		return "*"
	}
	return "o"
}

func activity(st scoring.Status) string {
	switch {
	case st.Active:
		return "*"
	case st.Mode == scoring.ModeNone:
		return "?"
	default:
		return "."
	}
}

func fit(s string) string {
	if len(s) > Width {
		return s[:Width]
	}
	return s
}
