// Package control runs the fixed-rate loop that feeds operator input to the
// scoring coordinator and the color ejection subsystem.
package control

import (
	"context"
	"errors"
	"time"

	"github.com/CodexForgeBR/ballroute/internal/display"
	"github.com/CodexForgeBR/ballroute/internal/ejection"
	"github.com/CodexForgeBR/ballroute/internal/hardware"
	"github.com/CodexForgeBR/ballroute/internal/logging"
	"github.com/CodexForgeBR/ballroute/internal/operator"
	"github.com/CodexForgeBR/ballroute/internal/scoring"
	"github.com/CodexForgeBR/ballroute/internal/sim"
)

// ErrIncomplete is returned by NewLoop when a required part is missing.
var ErrIncomplete = errors.New("control loop incomplete")

// Pacer blocks until the next tick is due.
type Pacer interface {
	Wait(ctx context.Context) error
}

// SimPacer advances a manual clock by one tick per Wait.
type SimPacer struct {
	Clock *sim.Clock
	Tick  time.Duration
}

// Wait implements Pacer.
func (p SimPacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Clock.Advance(p.Tick)
	return nil
}

// RealtimePacer holds each tick to the wall clock before delegating to Next,
// so a simulation can be watched as it runs.
type RealtimePacer struct {
	ticker *time.Ticker
	next   Pacer
}

// NewRealtimePacer ticks every d. Call Stop when done.
func NewRealtimePacer(d time.Duration, next Pacer) *RealtimePacer {
	return &RealtimePacer{ticker: time.NewTicker(d), next: next}
}

// Wait implements Pacer.
func (p *RealtimePacer) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ticker.C:
	}
	if p.next == nil {
		return nil
	}
	return p.next.Wait(ctx)
}

// Stop releases the ticker.
func (p *RealtimePacer) Stop() { p.ticker.Stop() }

// Loop is one control task. Every tick it polls the operator, applies the
// bindings, enforces coordinator timeouts, runs the ejector and refreshes the
// controller screen, in that order.
type Loop struct {
	Coord    *scoring.Coordinator
	Ejector  *ejection.Ejector
	Source   operator.Source
	Bindings *operator.Bindings
	Clock    hardware.Clock
	Pacer    Pacer
	Display  *display.Updater

	// Until stops Run when it returns true. Nil runs until cancelled.
	Until func() bool
	// AfterTick runs at the end of every tick. An error stops the loop.
	AfterTick func() error

	edges operator.EdgeDetector
	ticks int
}

// NewLoop checks that the required parts are present.
func NewLoop(l Loop) (*Loop, error) {
	switch {
	case l.Coord == nil:
		return nil, errors.Join(ErrIncomplete, errors.New("coordinator is nil"))
	case l.Source == nil:
		return nil, errors.Join(ErrIncomplete, errors.New("input source is nil"))
	case l.Bindings == nil:
		return nil, errors.Join(ErrIncomplete, errors.New("bindings are nil"))
	case l.Pacer == nil:
		return nil, errors.Join(ErrIncomplete, errors.New("pacer is nil"))
	}
	if l.Clock == nil {
		l.Clock = hardware.SystemClock{}
	}
	return &l, nil
}

// Ticks is the number of completed ticks.
func (l *Loop) Ticks() int { return l.ticks }

// Step runs a single tick without pacing.
func (l *Loop) Step() error {
	edges := l.edges.Update(l.Source.Poll())
	if l.Bindings.Apply(edges) && l.Display != nil {
		l.Display.Force()
	}

	l.Coord.Tick()
	if l.Ejector != nil {
		l.Ejector.Tick()
	}
	if l.Display != nil {
		l.Display.Update(l.Coord.Status(), l.Clock.Now())
	}

	l.ticks++
	if l.AfterTick != nil {
		return l.AfterTick()
	}
	return nil
}

// Run ticks until Until reports true, ctx is cancelled or a tick fails.
// Every motor is stopped on the way out.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Coord.StopAll()

	logging.Debugf("control loop started at tick %d", l.ticks)
	for {
		if l.Until != nil && l.Until() {
			logging.Debugf("control loop finished after %d ticks", l.ticks)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.Step(); err != nil {
			return err
		}
		if err := l.Pacer.Wait(ctx); err != nil {
			return err
		}
	}
}

// RunTicks runs exactly n paced ticks. Motors are left as the last tick
// commanded them.
func (l *Loop) RunTicks(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := l.Step(); err != nil {
			return err
		}
		if err := l.Pacer.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
