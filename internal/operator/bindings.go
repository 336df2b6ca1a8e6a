package operator

import (
	"errors"
	"fmt"
	"time"

	"github.com/CodexForgeBR/ballroute/internal/ejection"
	"github.com/CodexForgeBR/ballroute/internal/hardware"
	"github.com/CodexForgeBR/ballroute/internal/logging"
	"github.com/CodexForgeBR/ballroute/internal/scoring"
)

// EjectStep is how much one press of the duration buttons changes the
// ejection duration.
const EjectStep = 50 * time.Millisecond

// Scorer is the part of the coordinator the operator drives.
type Scorer interface {
	SelectStorage(mode scoring.ScoringMode) (bool, error)
	RequestFront() error
	RequestBack() error
	ToggleStorageRouting()
	StorageRoutingEnabled() bool
	ToggleFlap()
	AddBallToStorage() bool
	RemoveBallFromStorage() bool
	StorageCount() int
}

// Sorter is the part of the ejector the operator drives.
type Sorter interface {
	SetSortingPolicy(p ejection.SortingPolicy)
	ToggleSorting() ejection.SortingPolicy
	TriggerEjection() error
	EjectionDuration() time.Duration
	SetEjectionDuration(d time.Duration) time.Duration
}

var (
	_ Scorer = (*scoring.Coordinator)(nil)
	_ Sorter = (*ejection.Ejector)(nil)
)

var modeButtons = []struct {
	action Action
	mode   scoring.ScoringMode
}{
	{ActionCollection, scoring.ModeCollection},
	{ActionMidGoal, scoring.ModeMidGoal},
	{ActionLowGoal, scoring.ModeLowGoal},
	{ActionTopGoal, scoring.ModeTopGoal},
}

// Bindings maps button edges onto coordinator and ejector calls.
type Bindings struct {
	scorer   Scorer
	sorter   Sorter
	feedback hardware.Feedback
}

// NewBindings wires the operator to scorer and sorter. A nil sorter leaves
// the color controls unbound.
func NewBindings(scorer Scorer, sorter Sorter, feedback hardware.Feedback) *Bindings {
	if feedback == nil {
		feedback = hardware.NopFeedback{}
	}
	return &Bindings{scorer: scorer, sorter: sorter, feedback: feedback}
}

// Apply dispatches one poll worth of edges. It reports whether any command
// ran so the caller can force a display refresh.
func (b *Bindings) Apply(e Edges) bool {
	handled := false

	for _, mb := range modeButtons {
		if !e.Rising(mb.action) {
			continue
		}
		handled = true
		if _, err := b.scorer.SelectStorage(mb.mode); err != nil {
			logging.Debugf("%s: %v", mb.action, err)
		}
	}

	// Holding the storage toggle turns the execute buttons into manual
	// storage count adjustments.
	if e.IsHeld(ActionStorageToggle) {
		if e.Rising(ActionExecuteBack) {
			handled = true
			b.adjustStorage(+1)
		}
		if e.Rising(ActionExecuteFront) {
			handled = true
			b.adjustStorage(-1)
		}
	} else {
		if e.Rising(ActionExecuteFront) {
			handled = true
			b.report(ActionExecuteFront, b.scorer.RequestFront())
		}
		if e.Rising(ActionExecuteBack) {
			handled = true
			b.report(ActionExecuteBack, b.scorer.RequestBack())
		}
	}

	if e.Rising(ActionStorageToggle) {
		handled = true
		b.scorer.ToggleStorageRouting()
		text := "STORAGE: OFF"
		if b.scorer.StorageRoutingEnabled() {
			text = "STORAGE: ON"
		}
		hardware.Notify(b.feedback, 2, text, ".")
	}
	if e.Rising(ActionFlapToggle) {
		handled = true
		b.scorer.ToggleFlap()
	}

	if b.sorter == nil {
		return handled
	}

	if e.StickRed {
		handled = true
		b.sorter.SetSortingPolicy(ejection.CollectRed)
		hardware.Notify(b.feedback, 2, "SORT: RED", ".")
	}
	if e.StickBlue {
		handled = true
		b.sorter.SetSortingPolicy(ejection.CollectBlue)
		hardware.Notify(b.feedback, 2, "SORT: BLUE", ".")
	}
	if e.Rising(ActionManualEject) {
		handled = true
		b.report(ActionManualEject, b.sorter.TriggerEjection())
	}
	if e.Rising(ActionSortToggle) {
		handled = true
		p := b.sorter.ToggleSorting()
		hardware.Notify(b.feedback, 2, "SORT: "+p.String(), ".")
	}
	if e.Rising(ActionEjectLonger) {
		handled = true
		b.stepDuration(EjectStep)
	}
	if e.Rising(ActionEjectShorter) {
		handled = true
		b.stepDuration(-EjectStep)
	}
	return handled
}

func (b *Bindings) adjustStorage(delta int) {
	if delta > 0 {
		if !b.scorer.AddBallToStorage() {
			hardware.Notify(b.feedback, 1, "Storage Full!", "--")
			return
		}
		hardware.Notify(b.feedback, 1, fmt.Sprintf("Ball Added: %d/%d", b.scorer.StorageCount(), scoring.MaxStorage), ".")
		return
	}
	if !b.scorer.RemoveBallFromStorage() {
		hardware.Notify(b.feedback, 1, "Storage Empty!", "--")
		return
	}
	hardware.Notify(b.feedback, 1, fmt.Sprintf("Ball Removed: %d/%d", b.scorer.StorageCount(), scoring.MaxStorage), ".")
}

func (b *Bindings) stepDuration(delta time.Duration) {
	applied := b.sorter.SetEjectionDuration(b.sorter.EjectionDuration() + delta)
	hardware.Notify(b.feedback, 2, "EJECT: "+logging.FormatMillis(applied), "")
}

// report logs a refused command. The coordinator has already told the
// operator, so only unexpected failures are surfaced as warnings.
func (b *Bindings) report(a Action, err error) {
	switch {
	case err == nil:
	case errors.Is(err, scoring.ErrNoMode),
		errors.Is(err, scoring.ErrStorageFull),
		errors.Is(err, ejection.ErrNotFunctional):
		logging.Debugf("%s refused: %v", a, err)
	default:
		logging.Warnf("%s failed: %v", a, err)
	}
}
