package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"wifiprober/internal/models"
)

// Alert titles written by the per-cycle threshold checks
const (
	AlertNoInternet = "No internet connection"
	AlertLowSpeed   = "Low internet speed"
)

// AlertLog is the append-only NDJSON alert file. Entries are never cleared.
type AlertLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewAlertLog(path string) *AlertLog {
	return &AlertLog{path: path, now: time.Now}
}

// Append writes one alert line.
func (a *AlertLog) Append(title, message string) error {
	log.Printf("[ALERT] %s - %s", title, message)

	line, err := json.Marshal(models.Alert{
		Timestamp: models.FormatTimestamp(a.now()),
		Title:     title,
		Message:   message,
	})
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// Recent returns up to limit of the newest alerts, newest last. Malformed
// lines are skipped; a missing file means no alerts.
func (a *AlertLog) Recent(limit int) []models.Alert {
	alerts := []models.Alert{}

	f, err := os.Open(a.path)
	if err != nil {
		return alerts
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var alert models.Alert
		if err := json.Unmarshal(scanner.Bytes(), &alert); err != nil {
			continue
		}
		alerts = append(alerts, alert)
	}

	if limit > 0 && len(alerts) > limit {
		alerts = alerts[len(alerts)-limit:]
	}
	return alerts
}

// AlertPolicy holds the thresholds evaluated once per probe cycle.
type AlertPolicy struct {
	OnNoInternet    bool
	LowSpeedLimitMb float64
}

// CheckAlerts evaluates a finished sample and appends any violations.
// It returns the titles that fired.
func CheckAlerts(sample models.ProbeSample, policy AlertPolicy, alerts *AlertLog) []string {
	var fired []string

	if policy.OnNoInternet && sample.Speedtest.Failed() {
		fired = append(fired, AlertNoInternet)
		if err := alerts.Append(AlertNoInternet, "WiFi prober cannot measure internet speed"); err != nil {
			log.Printf("[ALERT] Could not write alert: %v", err)
		}
	}

	if policy.LowSpeedLimitMb > 0 && !sample.Speedtest.Failed() && sample.Speedtest.DownloadMbps < policy.LowSpeedLimitMb {
		fired = append(fired, AlertLowSpeed)
		msg := fmt.Sprintf("Download speed: %g Mbps (limit: %g Mbps)", sample.Speedtest.DownloadMbps, policy.LowSpeedLimitMb)
		if err := alerts.Append(AlertLowSpeed, msg); err != nil {
			log.Printf("[ALERT] Could not write alert: %v", err)
		}
	}

	return fired
}
