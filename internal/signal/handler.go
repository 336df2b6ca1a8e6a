// Package signal stops the robot cleanly when the process is interrupted.
//
// Setup registers handlers for SIGINT and SIGTERM. On the first signal the
// shutdown hooks run in order, typically commanding every motor to zero, and
// then the run context is canceled so the control loop exits.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/CodexForgeBR/ballroute/internal/logging"
)

// Handler records which signal, if any, ended the run.
type Handler struct {
	mu       sync.Mutex
	ch       chan os.Signal
	hooks    []func()
	received os.Signal
}

// Setup installs the handler. It returns immediately; a goroutine waits for
// either a signal or ctx to end and unregisters itself afterwards. Nil hooks
// are skipped.
//
// Example usage:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	h := signal.Setup(ctx, cancel, coord.StopAll)
func Setup(ctx context.Context, cancel context.CancelFunc, hooks ...func()) *Handler {
	h := &Handler{ch: make(chan os.Signal, 1), hooks: hooks}
	signal.Notify(h.ch, syscall.SIGINT, syscall.SIGTERM)
	go h.wait(ctx, cancel)
	return h
}

func (h *Handler) wait(ctx context.Context, cancel context.CancelFunc) {
	defer signal.Stop(h.ch)
	select {
	case sig := <-h.ch:
		h.fire(sig, cancel)
	case <-ctx.Done():
	}
}

func (h *Handler) fire(sig os.Signal, cancel context.CancelFunc) {
	h.mu.Lock()
	h.received = sig
	hooks := h.hooks
	h.mu.Unlock()

	logging.Warnf("received %s, stopping all motors", sig)
	for _, hook := range hooks {
		if hook != nil {
			hook()
		}
	}
	cancel()
}

// Received returns the signal that ended the run, or nil.
func (h *Handler) Received() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Interrupted reports whether a signal ended the run.
func (h *Handler) Interrupted() bool { return h.Received() != nil }
