package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config mirrors the on-disk configuration file. JSON files are accepted too,
// since every JSON document is valid YAML.
type Config struct {
	General    GeneralConfig    `yaml:"general"`
	WiFi       WiFiConfig       `yaml:"wifi"`
	Ping       PingConfig       `yaml:"ping"`
	Speedtest  SpeedtestConfig  `yaml:"speedtest"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Live       LiveConfig       `yaml:"live"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	Storage    StorageConfig    `yaml:"storage"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

type GeneralConfig struct {
	ProbeIntervalSeconds int    `yaml:"probe_interval_seconds"`
	MaxStoredResults     int    `yaml:"max_stored_results"`
	LogLevel             string `yaml:"log_level"`
	ResultsFile          string `yaml:"results_file"`
	AlertsFile           string `yaml:"alerts_file"`
}

type WiFiConfig struct {
	Interface          string   `yaml:"interface"`
	ScanTimeoutSeconds int      `yaml:"scan_timeout_seconds"`
	UseSudo            *bool    `yaml:"use_sudo"`
	KnownNetworks      []string `yaml:"known_networks"`
}

type PingConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type SpeedtestConfig struct {
	Enabled        *bool  `yaml:"enabled"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ServerID       *int   `yaml:"server_id"`
	HistoryFile    string `yaml:"history_file"`
}

type MonitoringConfig struct {
	AlertOnNoInternet   *bool    `yaml:"alert_on_no_internet"`
	AlertOnLowSpeedMbps *float64 `yaml:"alert_on_low_speed_mbps"`
}

type LiveConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	PingTimeoutMs   int    `yaml:"ping_timeout_ms"`
	DiskPath        string `yaml:"disk_path"`
}

type DashboardConfig struct {
	Addr                 string   `yaml:"addr"`
	RescanCommand        []string `yaml:"rescan_command"`
	RescanTimeoutSeconds int      `yaml:"rescan_timeout_seconds"`
	RateLimitRPS         float64  `yaml:"rate_limit_rps"`
	AllowedOrigins       []string `yaml:"allowed_origins"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the file at path. A missing file yields the defaults; a file that
// cannot be parsed or validated is an error.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("[CONFIG] %s not found, using defaults", path)
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func boolPtr(v bool) *bool { return &v }

func (c *Config) applyDefaults() {
	if c.General.ProbeIntervalSeconds == 0 {
		c.General.ProbeIntervalSeconds = 300
	}
	if c.General.MaxStoredResults == 0 {
		c.General.MaxStoredResults = 1000
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "INFO"
	}
	if c.General.ResultsFile == "" {
		c.General.ResultsFile = "./data/wifi_probe_results.json"
	}
	if c.General.AlertsFile == "" {
		c.General.AlertsFile = "./data/alerts.json"
	}
	if c.WiFi.Interface == "" {
		c.WiFi.Interface = "wlan0"
	}
	if c.WiFi.ScanTimeoutSeconds == 0 {
		c.WiFi.ScanTimeoutSeconds = 30
	}
	if c.WiFi.UseSudo == nil {
		c.WiFi.UseSudo = boolPtr(true)
	}
	if c.Ping.TimeoutSeconds == 0 {
		c.Ping.TimeoutSeconds = 3
	}
	if c.Speedtest.Enabled == nil {
		c.Speedtest.Enabled = boolPtr(true)
	}
	if c.Speedtest.TimeoutSeconds == 0 {
		c.Speedtest.TimeoutSeconds = 60
	}
	if c.Monitoring.AlertOnNoInternet == nil {
		c.Monitoring.AlertOnNoInternet = boolPtr(true)
	}
	if c.Monitoring.AlertOnLowSpeedMbps == nil {
		limit := 10.0
		c.Monitoring.AlertOnLowSpeedMbps = &limit
	}
	if c.Live.IntervalSeconds == 0 {
		c.Live.IntervalSeconds = 1
	}
	if c.Live.PingTimeoutMs == 0 {
		c.Live.PingTimeoutMs = 2000
	}
	if c.Live.DiskPath == "" {
		c.Live.DiskPath = "/"
	}
	if c.Dashboard.Addr == "" {
		c.Dashboard.Addr = ":5000"
	}
	if c.Dashboard.RescanTimeoutSeconds == 0 {
		c.Dashboard.RescanTimeoutSeconds = 180
	}
	if c.Dashboard.RateLimitRPS == 0 {
		c.Dashboard.RateLimitRPS = 100
	}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = "json"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "./data/wifi_probe_results.db"
	}
}

func (c *Config) validate() error {
	if c.General.ProbeIntervalSeconds < 0 {
		return fmt.Errorf("general.probe_interval_seconds must be positive")
	}
	if c.General.MaxStoredResults < 0 {
		return fmt.Errorf("general.max_stored_results must be positive")
	}
	if c.Live.IntervalSeconds < 0 {
		return fmt.Errorf("live.interval_seconds must be positive")
	}
	// zero is replaced by the default, so only negatives reach here
	timeouts := []struct {
		key   string
		value int
	}{
		{"wifi.scan_timeout_seconds", c.WiFi.ScanTimeoutSeconds},
		{"ping.timeout_seconds", c.Ping.TimeoutSeconds},
		{"speedtest.timeout_seconds", c.Speedtest.TimeoutSeconds},
		{"live.ping_timeout_ms", c.Live.PingTimeoutMs},
		{"dashboard.rescan_timeout_seconds", c.Dashboard.RescanTimeoutSeconds},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("%s must be positive", t.key)
		}
	}
	switch c.Storage.Driver {
	case "json", "sqlite":
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	return nil
}

// Debug reports whether verbose logging was requested.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.General.LogLevel, "DEBUG")
}

// LowSpeedLimit returns the download threshold in Mbps, 0 when disabled.
func (c *Config) LowSpeedLimit() float64 {
	if c.Monitoring.AlertOnLowSpeedMbps == nil {
		return 0
	}
	return *c.Monitoring.AlertOnLowSpeedMbps
}

func (c *Config) ProbeInterval() time.Duration {
	return time.Duration(c.General.ProbeIntervalSeconds) * time.Second
}

func (c *Config) LiveInterval() time.Duration {
	return time.Duration(c.Live.IntervalSeconds) * time.Second
}

func (c *Config) ScanTimeout() time.Duration {
	return time.Duration(c.WiFi.ScanTimeoutSeconds) * time.Second
}

func (c *Config) PingTimeout() time.Duration {
	return time.Duration(c.Ping.TimeoutSeconds) * time.Second
}

func (c *Config) LivePingTimeout() time.Duration {
	return time.Duration(c.Live.PingTimeoutMs) * time.Millisecond
}

func (c *Config) SpeedtestTimeout() time.Duration {
	return time.Duration(c.Speedtest.TimeoutSeconds) * time.Second
}

func (c *Config) RescanTimeout() time.Duration {
	return time.Duration(c.Dashboard.RescanTimeoutSeconds) * time.Second
}
