package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var errFakeExit = errors.New("exit status 1")

// fakeRunner answers commands from a table keyed by the full command line.
// Unknown commands fail like a non-zero exit.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	fail    map[string]bool
	delay   map[string]time.Duration
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[string]string{},
		fail:    map[string]bool{},
		delay:   map[string]time.Duration{},
	}
}

func (f *fakeRunner) on(cmdline, out string) *fakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[cmdline] = out
	delete(f.fail, cmdline)
	return f
}

func (f *fakeRunner) failOn(cmdline string) *fakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[cmdline] = true
	return f
}

func (f *fakeRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.calls = append(f.calls, cmdline)
	out, ok := f.outputs[cmdline]
	failed := f.fail[cmdline]
	delay := f.delay[cmdline]
	f.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		deadline := time.After(timeout)
		select {
		case <-timer.C:
		case <-deadline:
			return "", fmt.Errorf("%s: %w", name, ErrCommandTimeout)
		case <-ctx.Done():
			return "", fmt.Errorf("%s: %w", name, ErrCommandTimeout)
		}
	}
	if failed || !ok {
		return out, fmt.Errorf("%s: %w", name, errFakeExit)
	}
	return out, nil
}

func (f *fakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
