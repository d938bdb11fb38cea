package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrCommandTimeout is returned when an external command outlives its deadline.
var ErrCommandTimeout = errors.New("command timed out")

// CommandRunner executes external tools. Every call is bounded by timeout; a
// non-zero exit or an expired deadline is an error.
type CommandRunner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if ctx.Err() != nil {
		return stdout.String(), fmt.Errorf("%s: %w", name, ErrCommandTimeout)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return stdout.String(), fmt.Errorf("%s: %w", name, err)
		}
		return stdout.String(), fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return stdout.String(), nil
}

// withSudo prefixes a command with sudo when requested.
func withSudo(useSudo bool, name string, args ...string) (string, []string) {
	if !useSudo {
		return name, args
	}
	return "sudo", append([]string{name}, args...)
}
