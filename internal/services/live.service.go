package services

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"wifiprober/internal/models"
	"wifiprober/internal/telemetry"

	"golang.org/x/sync/errgroup"
)

// ResourceReader takes an instantaneous host resource reading.
type ResourceReader interface {
	Sample(ctx context.Context) models.ResourceStatus
}

// LiveSampler is the short-period loop behind the live view. Each tick pings
// every target concurrently, reads host resources, and publishes a new
// snapshot in a single atomic store.
type LiveSampler struct {
	pinger          PingStage
	targets         []Target
	resources       ResourceReader
	incidents       *IncidentTracker
	interval        time.Duration
	pingTimeout     time.Duration
	resourceTimeout time.Duration

	snapshot atomic.Pointer[models.LiveSnapshot]
	running  atomic.Bool
	onTick   func(models.LiveSnapshot)
	now      func() time.Time
}

func NewLiveSampler(pinger PingStage, resources ResourceReader, incidents *IncidentTracker,
	interval, pingTimeout time.Duration) *LiveSampler {
	if interval <= 0 {
		interval = time.Second
	}
	if pingTimeout <= 0 {
		pingTimeout = 2 * time.Second
	}
	s := &LiveSampler{
		pinger:          pinger,
		targets:         DefaultTargets,
		resources:       resources,
		incidents:       incidents,
		interval:        interval,
		pingTimeout:     pingTimeout,
		resourceTimeout: time.Second,
		now:             time.Now,
	}
	s.snapshot.Store(&models.LiveSnapshot{Incident: incidents.Current()})
	return s
}

// OnTick registers a callback invoked with every published snapshot. It must
// be set before Start.
func (s *LiveSampler) OnTick(fn func(models.LiveSnapshot)) {
	s.onTick = fn
}

// Snapshot returns the latest published metrics and incident state.
func (s *LiveSampler) Snapshot() models.LiveSnapshot {
	return *s.snapshot.Load()
}

// Start runs the loop in the background until ctx is cancelled. Calling it
// twice is a no-op.
func (s *LiveSampler) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer s.running.Store(false)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			s.Tick(ctx)
			select {
			case <-ctx.Done():
				log.Println("[LIVE] Live sampler stopped")
				return
			case <-ticker.C:
			}
		}
	}()

	log.Printf("[LIVE] Live sampler started (interval: %v)", s.interval)
}

// Tick performs one sampling round and returns the transition it caused.
func (s *LiveSampler) Tick(ctx context.Context) Transition {
	at := s.now()

	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	results := make([]TargetOutcome, len(s.targets))
	g, gctx := errgroup.WithContext(pingCtx)
	for i, target := range s.targets {
		g.Go(func() error {
			results[i] = TargetOutcome{Target: target, Outcome: s.pinger.Ping(gctx, target.Host)}
			return nil
		})
	}
	_ = g.Wait()
	cancel()

	resCtx, cancel := context.WithTimeout(ctx, s.resourceTimeout)
	resources := s.resources.Sample(resCtx)
	cancel()

	pings := make(map[string]models.PingOutcome, len(results))
	for _, r := range results {
		pings[r.Target.Name] = r.Outcome
		telemetry.PingLatency.WithLabelValues(r.Target.Name).Set(r.Outcome.AvgMs)
		up := 0.0
		if r.Outcome.Success {
			up = 1
		}
		telemetry.PingUp.WithLabelValues(r.Target.Name).Set(up)
	}

	transition := s.incidents.Observe(at, results)
	snap := &models.LiveSnapshot{
		Metrics: &models.LiveMetrics{
			Timestamp:      at,
			Ping:           pings,
			ResourceStatus: resources,
		},
		Incident: s.incidents.Current(),
	}
	s.snapshot.Store(snap)

	if s.onTick != nil {
		s.onTick(*snap)
	}
	return transition
}
