// Package operator turns raw controller state into the edge-triggered
// commands the coordinator and the ejector understand.
package operator

import (
	"fmt"
	"sort"
	"strings"
)

// Action is a named digital control.
type Action int

const (
	ActionCollection Action = iota
	ActionMidGoal
	ActionLowGoal
	ActionTopGoal
	ActionExecuteFront
	ActionExecuteBack
	ActionStorageToggle
	ActionFlapToggle
	ActionManualEject
	ActionSortToggle
	ActionEjectLonger
	ActionEjectShorter
)

var actionNames = map[Action]string{
	ActionCollection:    "collection",
	ActionMidGoal:       "mid_goal",
	ActionLowGoal:       "low_goal",
	ActionTopGoal:       "top_goal",
	ActionExecuteFront:  "front",
	ActionExecuteBack:   "back",
	ActionStorageToggle: "storage_toggle",
	ActionFlapToggle:    "flap_toggle",
	ActionManualEject:   "eject",
	ActionSortToggle:    "sort_toggle",
	ActionEjectLonger:   "eject_longer",
	ActionEjectShorter:  "eject_shorter",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction looks up an action by name, case-insensitively.
func ParseAction(name string) (Action, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	for a, s := range actionNames {
		if s == norm {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q (valid: %s)", name, strings.Join(ActionNames(), ", "))
}

// ActionNames returns every action name, sorted.
func ActionNames() []string {
	names := make([]string, 0, len(actionNames))
	for _, s := range actionNames {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// StickThreshold is how far a stick must be pushed to select a color.
const StickThreshold = 50

// Input is one poll of the controller.
type Input struct {
	Held   map[Action]bool
	LeftX  int
	RightX int
}

// NewInput returns an input with the given actions held.
func NewInput(held ...Action) Input {
	in := Input{Held: make(map[Action]bool, len(held))}
	for _, a := range held {
		in.Held[a] = true
	}
	return in
}

// IsHeld reports whether a is down.
func (in Input) IsHeld(a Action) bool { return in.Held[a] }

// Source yields one Input per control period.
type Source interface {
	Poll() Input
}

// Edges is what changed between two polls.
type Edges struct {
	Pressed   map[Action]bool
	Held      map[Action]bool
	StickRed  bool
	StickBlue bool
}

// Rising reports whether a went down this poll.
func (e Edges) Rising(a Action) bool { return e.Pressed[a] }

// IsHeld reports whether a is down this poll.
func (e Edges) IsHeld(a Action) bool { return e.Held[a] }

// Any reports whether anything was pressed.
func (e Edges) Any() bool { return len(e.Pressed) > 0 || e.StickRed || e.StickBlue }

// EdgeDetector compares each poll with the previous one.
type EdgeDetector struct {
	prev     map[Action]bool
	prevRed  bool
	prevBlue bool
}

// Update returns the rising edges of in relative to the last call.
func (d *EdgeDetector) Update(in Input) Edges {
	e := Edges{Pressed: map[Action]bool{}, Held: map[Action]bool{}}
	for a, down := range in.Held {
		if !down {
			continue
		}
		e.Held[a] = true
		if !d.prev[a] {
			e.Pressed[a] = true
		}
	}

	red := in.LeftX < -StickThreshold
	blue := in.RightX > StickThreshold
	e.StickRed = red && !d.prevRed
	e.StickBlue = blue && !d.prevBlue

	d.prev = e.Held
	d.prevRed, d.prevBlue = red, blue
	return e
}
