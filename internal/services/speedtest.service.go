package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"wifiprober/internal/models"
)

// speedtest-cli --json output, only the fields we keep
type speedtestCLIResult struct {
	Download float64 `json:"download"`
	Upload   float64 `json:"upload"`
	Ping     float64 `json:"ping"`
	Server   struct {
		Name string `json:"name"`
	} `json:"server"`
	Client struct {
		ISP string `json:"isp"`
	} `json:"client"`
}

// SpeedtestRunner measures bandwidth with speedtest-cli.
type SpeedtestRunner struct {
	runner      CommandRunner
	iface       string
	serverID    *int
	timeout     time.Duration
	historyFile string
	historyMu   sync.Mutex
	now         func() time.Time
}

func NewSpeedtestRunner(runner CommandRunner, iface string, serverID *int, timeout time.Duration, historyFile string) *SpeedtestRunner {
	return &SpeedtestRunner{
		runner:      runner,
		iface:       iface,
		serverID:    serverID,
		timeout:     timeout,
		historyFile: historyFile,
		now:         time.Now,
	}
}

// checkInternet is a cheap reachability test before the long measurement.
func (s *SpeedtestRunner) checkInternet(ctx context.Context) bool {
	_, err := s.runner.Run(ctx, s.timeout, "ping", "-c", "3", "8.8.8.8")
	return err == nil
}

// Run performs one measurement. Any failure is returned as an error marker.
func (s *SpeedtestRunner) Run(ctx context.Context) models.SpeedtestOutcome {
	if !s.checkInternet(ctx) {
		log.Printf("[SPEEDTEST] No internet connection")
		return models.SpeedtestError("no internet connection")
	}

	args := []string{"--json"}
	if ip := InterfaceIPv4(ctx, s.iface); ip != "" {
		args = append(args, "--source", ip)
	}
	if s.serverID != nil {
		args = append(args, "--server", strconv.Itoa(*s.serverID))
	}

	out, err := s.runner.Run(ctx, s.timeout, "speedtest-cli", args...)
	if err != nil {
		log.Printf("[SPEEDTEST] Speedtest failed: %v", err)
		return models.SpeedtestError(fmt.Sprintf("speedtest failed: %v", err))
	}

	result, err := parseSpeedtestOutput(out, s.now())
	if err != nil {
		log.Printf("[SPEEDTEST] Could not parse speedtest output: %v", err)
		return models.SpeedtestError(fmt.Sprintf("unparseable speedtest output: %v", err))
	}

	if s.historyFile != "" {
		s.appendHistory(result)
	}
	return result
}

func parseSpeedtestOutput(out string, at time.Time) (models.SpeedtestOutcome, error) {
	var data speedtestCLIResult
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		return models.SpeedtestOutcome{}, err
	}

	server := data.Server.Name
	if server == "" {
		server = "unknown"
	}
	isp := data.Client.ISP
	if isp == "" {
		isp = "unknown"
	}

	return models.SpeedtestOutcome{
		Timestamp:    models.FormatTimestamp(at),
		DownloadMbps: roundTo(data.Download/1_000_000, 2),
		UploadMbps:   roundTo(data.Upload/1_000_000, 2),
		PingMs:       data.Ping,
		Server:       server,
		ISP:          isp,
	}, nil
}

// appendHistory adds a result to the standalone speedtest document. It is a
// best-effort write; errors are logged only.
func (s *SpeedtestRunner) appendHistory(result models.SpeedtestOutcome) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	var history models.SpeedtestHistory
	if err := readJSONDocument(s.historyFile, &history); err != nil {
		history = models.SpeedtestHistory{}
	}
	history.Tests = append(history.Tests, result)

	if err := writeJSONDocument(s.historyFile, history); err != nil {
		log.Printf("[SPEEDTEST] Could not save history to %s: %v", s.historyFile, err)
	}
}
