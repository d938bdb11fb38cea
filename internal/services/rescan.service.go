package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"wifiprober/internal/telemetry"
)

// ErrRescanBusy is returned when a rescan is requested while one is running.
var ErrRescanBusy = errors.New("rescan already in progress")

// Rescan status values
const (
	RescanInProgress = "in_progress"
	RescanIdle       = "idle"
)

// RescanTrigger performs the out-of-band work.
type RescanTrigger interface {
	Rescan(ctx context.Context) error
}

// CommandTrigger restarts the probe process through an external command,
// e.g. a service manager restart.
type CommandTrigger struct {
	runner  CommandRunner
	command []string
	timeout time.Duration
}

func NewCommandTrigger(runner CommandRunner, command []string, timeout time.Duration) *CommandTrigger {
	return &CommandTrigger{runner: runner, command: command, timeout: timeout}
}

func (t *CommandTrigger) Rescan(ctx context.Context) error {
	if len(t.command) == 0 {
		return errors.New("no rescan command configured")
	}
	if _, err := t.runner.Run(ctx, t.timeout, t.command[0], t.command[1:]...); err != nil {
		return fmt.Errorf("%s: %w", strings.Join(t.command, " "), err)
	}
	return nil
}

// Rescanner admits at most one rescan at a time. A request made while one is
// in flight is rejected immediately, never queued.
type Rescanner struct {
	trigger RescanTrigger
	timeout time.Duration
	busy    atomic.Bool
	lastErr atomic.Pointer[string]
}

func NewRescanner(trigger RescanTrigger, timeout time.Duration) *Rescanner {
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &Rescanner{trigger: trigger, timeout: timeout}
}

// TryStart launches a rescan in the background. The returned channel is
// closed when it finishes.
func (r *Rescanner) TryStart(ctx context.Context) (<-chan struct{}, error) {
	if !r.busy.CompareAndSwap(false, true) {
		telemetry.RescanRequests.WithLabelValues("busy").Inc()
		log.Println("[RESCAN] Rejected, rescan already in progress")
		return nil, ErrRescanBusy
	}
	telemetry.RescanRequests.WithLabelValues("started").Inc()
	log.Println("[RESCAN] Rescan started")

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer r.busy.Store(false)

		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := r.trigger.Rescan(runCtx); err != nil {
			msg := err.Error()
			r.lastErr.Store(&msg)
			log.Printf("[RESCAN] Rescan failed: %v", err)
			return
		}
		r.lastErr.Store(nil)
		log.Println("[RESCAN] Rescan finished")
	}()
	return done, nil
}

// Status reports whether a rescan is running.
func (r *Rescanner) Status() string {
	if r.busy.Load() {
		return RescanInProgress
	}
	return RescanIdle
}

// LastError returns the error of the most recent finished rescan, if any.
func (r *Rescanner) LastError() string {
	if p := r.lastErr.Load(); p != nil {
		return *p
	}
	return ""
}
