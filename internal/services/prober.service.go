package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"wifiprober/internal/models"
	"wifiprober/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

// ErrStageSkipped marks stages that were not started because shutdown was
// requested earlier in the cycle.
var ErrStageSkipped = errors.New("skipped: shutdown in progress")

// Stage ports used by the prober. The concrete Pinger, Scanner,
// SpeedtestRunner and SystemInfoCollector satisfy them.
type (
	PingStage interface {
		Ping(ctx context.Context, host string) models.PingOutcome
	}
	ScanStage interface {
		Scan(ctx context.Context) ScanOutcome
	}
	SpeedtestStage interface {
		Run(ctx context.Context) models.SpeedtestOutcome
	}
	SystemStage interface {
		Collect(ctx context.Context) models.SystemInfo
	}
)

// ProberOptions configures the probe loop.
type ProberOptions struct {
	Interval         time.Duration
	SpeedtestEnabled bool
	Alerts           AlertPolicy
}

// Prober runs the ordered probe cycle: ping, scan, speedtest, persist,
// alert-check. Ping always runs first on an idle link because the scan and
// the speedtest saturate it; the stages are never reordered or run in
// parallel.
type Prober struct {
	ping      PingStage
	scan      ScanStage
	speedtest SpeedtestStage
	system    SystemStage
	store     ResultStore
	alerts    *AlertLog
	opts      ProberOptions

	cycleMu  sync.Mutex
	stopping atomic.Bool
	now      func() time.Time
}

func NewProber(ping PingStage, scan ScanStage, speedtest SpeedtestStage, system SystemStage,
	store ResultStore, alerts *AlertLog, opts ProberOptions) *Prober {
	if opts.Interval <= 0 {
		opts.Interval = 300 * time.Second
	}
	return &Prober{
		ping:      ping,
		scan:      scan,
		speedtest: speedtest,
		system:    system,
		store:     store,
		alerts:    alerts,
		opts:      opts,
		now:       time.Now,
	}
}

// Run executes cycles until ctx is cancelled. Cancellation is observed
// between stages and while sleeping; a cycle in flight is still persisted.
func (p *Prober) Run(ctx context.Context) {
	log.Printf("[PROBER] Starting probe loop (interval: %v)", p.opts.Interval)
	stop := context.AfterFunc(ctx, func() { p.stopping.Store(true) })
	defer stop()

	for ctx.Err() == nil {
		if _, err := p.RunCycle(ctx); err != nil {
			log.Printf("[PROBER] Cycle error: %v", err)
		}

		timer := time.NewTimer(p.opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	p.stopping.Store(true)
	log.Println("[PROBER] Probe loop stopped")
}

// Rescan runs an out-of-band cycle. It waits for a scheduled cycle in flight
// so cycles never overlap. ctx bounds the request only: the stages keep their
// own timeouts and are skipped solely when the probe loop shuts down. A cycle
// that finishes after ctx expired is persisted and reported as overrun.
func (p *Prober) Rescan(ctx context.Context) error {
	_, err := p.RunCycle(context.WithoutCancel(ctx))
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("rescan overran its deadline: %w", ctx.Err())
	}
	return err
}

// halted reports whether the remaining stages of a cycle should be skipped.
func (p *Prober) halted(ctx context.Context) bool {
	return ctx.Err() != nil || p.stopping.Load()
}

// RunCycle performs one full cycle and returns the sample it persisted.
// Stage failures are recorded inside the sample; the returned error only
// reports a failed persist.
func (p *Prober) RunCycle(ctx context.Context) (models.ProbeSample, error) {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	started := p.now()
	// Stages keep running to their own timeout after shutdown is requested.
	stageCtx := context.WithoutCancel(ctx)
	stageCtx, span := telemetry.Tracer().Start(stageCtx, "probe_cycle")
	defer span.End()

	log.Println("[PROBER] Starting probe cycle")

	// 1. Ping on a quiet link.
	pings := models.PingResults{
		Google:     p.runPing(stageCtx, DefaultTargets[0]),
		Cloudflare: p.runPing(stageCtx, DefaultTargets[1]),
	}
	log.Printf("[PROBER] Ping google: %gms, cloudflare: %gms", pings.Google.AvgMs, pings.Cloudflare.AvgMs)

	// 2. Scan.
	var scan ScanOutcome
	if p.halted(ctx) {
		scan = ScanOutcome{Err: ErrStageSkipped}
	} else {
		scan = p.runScan(stageCtx)
	}
	if scan.Networks == nil {
		scan.Networks = []models.NetworkObservation{}
	}
	log.Printf("[PROBER] %d WiFi networks found", len(scan.Networks))

	// 3. Speedtest last, it saturates the link.
	var speed models.SpeedtestOutcome
	switch {
	case p.halted(ctx):
		speed = models.SpeedtestError(ErrStageSkipped.Error())
	case !p.opts.SpeedtestEnabled:
		speed = models.SpeedtestError("disabled")
	default:
		speed = p.runSpeedtest(stageCtx)
	}
	if speed.Failed() {
		telemetry.StageFailures.WithLabelValues("speedtest").Inc()
	} else {
		telemetry.DownloadMbps.Set(speed.DownloadMbps)
		log.Printf("[PROBER] Speedtest: %g Mbps down", speed.DownloadMbps)
	}

	sample := models.ProbeSample{
		Timestamp: models.FormatTimestamp(started),
		WifiScan: models.WifiScan{
			NetworksFound: len(scan.Networks),
			Networks:      scan.Networks,
		},
		Speedtest:  speed,
		Ping:       pings,
		SystemInfo: p.system.Collect(stageCtx),
	}

	// 4. Persist, then alert-check.
	var persistErr error
	if err := p.store.Append(sample); err != nil {
		persistErr = fmt.Errorf("persist sample: %w", err)
	}
	if !p.halted(ctx) {
		CheckAlerts(sample, p.opts.Alerts, p.alerts)
	}

	telemetry.ProbeCycles.Inc()
	telemetry.CycleDuration.Observe(p.now().Sub(started).Seconds())
	span.SetAttributes(
		attribute.Int("networks_found", sample.WifiScan.NetworksFound),
		attribute.Bool("outage", IsOutage(sample)),
	)
	return sample, persistErr
}

func (p *Prober) runPing(ctx context.Context, target Target) models.PingOutcome {
	ctx, span := telemetry.Tracer().Start(ctx, "ping")
	defer span.End()
	span.SetAttributes(attribute.String("target", target.Name))

	outcome := p.ping.Ping(ctx, target.Host)
	if !outcome.Success {
		telemetry.StageFailures.WithLabelValues("ping_" + target.Name).Inc()
	}
	return outcome
}

func (p *Prober) runScan(ctx context.Context) ScanOutcome {
	ctx, span := telemetry.Tracer().Start(ctx, "scan")
	defer span.End()

	outcome := p.scan.Scan(ctx)
	if outcome.Err != nil {
		telemetry.StageFailures.WithLabelValues("scan").Inc()
	} else {
		telemetry.NetworksVisible.Set(float64(len(outcome.Networks)))
	}
	return outcome
}

func (p *Prober) runSpeedtest(ctx context.Context) models.SpeedtestOutcome {
	ctx, span := telemetry.Tracer().Start(ctx, "speedtest")
	defer span.End()
	return p.speedtest.Run(ctx)
}
