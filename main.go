package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"wifiprober/internal/config"
	"wifiprober/internal/controllers"
	"wifiprober/internal/middleware"
	"wifiprober/internal/models"
	"wifiprober/internal/routes"
	"wifiprober/internal/services"
	"wifiprober/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "wifi_config.yaml", "path to the configuration file")
	addr := flag.String("addr", "", "listen address (overrides dashboard.addr)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("[CONFIG] %v, using defaults", err)
		cfg = config.Default()
	}
	if *addr != "" {
		cfg.Dashboard.Addr = *addr
	}

	services.SetDebug(*debug || cfg.Debug())
	if !*debug && !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	telemetry.InitMetrics()
	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.InitTracer(version)
		if err != nil {
			log.Printf("[TRACE] Tracer init failed: %v", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	store, closeStore := openStore(cfg)
	defer closeStore()

	runner := services.NewExecRunner()
	alerts := services.NewAlertLog(cfg.General.AlertsFile)

	prober := services.NewProber(
		services.NewPinger(runner, cfg.WiFi.Interface, cfg.PingTimeout()),
		services.NewScanner(runner, cfg.WiFi.Interface, *cfg.WiFi.UseSudo, cfg.ScanTimeout()),
		services.NewSpeedtestRunner(runner, cfg.WiFi.Interface, cfg.Speedtest.ServerID,
			cfg.SpeedtestTimeout(), cfg.Speedtest.HistoryFile),
		services.NewSystemInfoCollector(runner, cfg.WiFi.Interface),
		store,
		alerts,
		services.ProberOptions{
			Interval:         cfg.ProbeInterval(),
			SpeedtestEnabled: *cfg.Speedtest.Enabled,
			Alerts: services.AlertPolicy{
				OnNoInternet:    *cfg.Monitoring.AlertOnNoInternet,
				LowSpeedLimitMb: cfg.LowSpeedLimit(),
			},
		},
	)

	// live pings are not bound to the interface
	incidents := services.NewIncidentTracker()
	live := services.NewLiveSampler(
		services.NewPinger(runner, "", cfg.LivePingTimeout()),
		services.NewResourceSampler(cfg.Live.DiskPath),
		incidents,
		cfg.LiveInterval(),
		cfg.LivePingTimeout(),
	)

	var trigger services.RescanTrigger = prober
	if len(cfg.Dashboard.RescanCommand) > 0 {
		trigger = services.NewCommandTrigger(runner, cfg.Dashboard.RescanCommand, cfg.RescanTimeout())
	}
	rescanner := services.NewRescanner(trigger, cfg.RescanTimeout())

	hub := services.NewWebSocketHub()
	history := services.NewLiveHistory(600)
	live.OnTick(func(snap models.LiveSnapshot) {
		history.Record(snap)
		hub.PublishSnapshot(snap)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)
	live.Start(ctx)
	proberDone := make(chan struct{})
	go func() {
		defer close(proberDone)
		prober.Run(ctx)
	}()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Dashboard.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.Dashboard.RateLimitRPS)))

	h := &controllers.Handlers{
		Analytics: services.NewAnalytics(store, cfg.WiFi.KnownNetworks...),
		Live:      live,
		History:   history,
		Rescanner: rescanner,
		Alerts:    alerts,
		Hub:       hub,
		Interface: cfg.WiFi.Interface,
		Version:   version,
	}
	routes.RegisterAPIRoutes(r, h)
	routes.RegisterStreamRoutes(r, h)

	var handler http.Handler = r
	if cfg.Tracing.Enabled {
		handler = otelhttp.NewHandler(r, "wifiprober")
	}

	srv := &http.Server{
		Addr:              cfg.Dashboard.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[HTTP] Listening on %s", cfg.Dashboard.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[HTTP] Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("[MAIN] Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[HTTP] Shutdown error: %v", err)
	}

	// the prober finishes the stage in flight and persists before exiting
	<-proberDone
}

func openStore(cfg *config.Config) (services.ResultStore, func()) {
	if cfg.Storage.Driver == "sqlite" {
		s, err := services.NewSQLiteStore(cfg.Storage.SQLitePath, cfg.General.MaxStoredResults)
		if err == nil {
			log.Printf("[STORE] Using sqlite store at %s", cfg.Storage.SQLitePath)
			return s, func() { s.Close() }
		}
		log.Printf("[STORE] sqlite store unavailable (%v), falling back to %s", err, cfg.General.ResultsFile)
	}
	return services.NewJSONFileStore(cfg.General.ResultsFile, cfg.General.MaxStoredResults), func() {}
}
