package services

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"time"

	"wifiprober/internal/models"
)

// Fixed probe targets. The names are part of the persisted document.
const (
	TargetGoogle     = "google"
	TargetCloudflare = "cloudflare"
)

// Target is a named ping destination
type Target struct {
	Name string
	Host string
}

// DefaultTargets are the two hosts probed by both loops.
var DefaultTargets = []Target{
	{Name: TargetGoogle, Host: "8.8.8.8"},
	{Name: TargetCloudflare, Host: "1.1.1.1"},
}

var pingTimePattern = regexp.MustCompile(`time=([\d.]+)`)

// Pinger wraps the OS ping utility.
type Pinger struct {
	runner  CommandRunner
	iface   string
	timeout time.Duration
	waitSec int
}

// NewPinger returns a pinger that first binds to iface. An empty iface skips
// the bound attempt.
func NewPinger(runner CommandRunner, iface string, timeout time.Duration) *Pinger {
	wait := int(timeout/time.Second) - 1
	if wait < 1 {
		wait = 1
	}
	return &Pinger{runner: runner, iface: iface, timeout: timeout, waitSec: wait}
}

// Ping sends a single echo request. The interface-bound attempt runs first;
// if it fails an unbound ping is tried and its outcome is reported instead.
// Callers cannot tell which attempt produced the result.
func (p *Pinger) Ping(ctx context.Context, host string) models.PingOutcome {
	wait := strconv.Itoa(p.waitSec)

	var (
		out string
		err error
	)
	if p.iface != "" {
		out, err = p.runner.Run(ctx, p.timeout, "ping", "-I", p.iface, "-c", "1", "-W", wait, host)
	}
	if p.iface == "" || err != nil {
		out, err = p.runner.Run(ctx, p.timeout, "ping", "-c", "1", "-W", wait, host)
	}
	if err != nil {
		if debugLogging {
			log.Printf("[PING] %s failed: %v", host, err)
		}
		return models.FailedPing
	}
	return parsePingOutput(out)
}

func parsePingOutput(out string) models.PingOutcome {
	m := pingTimePattern.FindStringSubmatch(out)
	if m == nil {
		return models.FailedPing
	}
	ms, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return models.FailedPing
	}
	return models.PingOutcome{AvgMs: ms, Success: true}
}
