package services

import (
	"bufio"
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"wifiprober/internal/models"
)

var (
	macPattern       = regexp.MustCompile(`([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})`)
	essidPattern     = regexp.MustCompile(`ESSID:"([^"]*)"`)
	signalPattern    = regexp.MustCompile(`Signal level=(-?\d+)`)
	frequencyPattern = regexp.MustCompile(`Frequency:([0-9.]+) GHz`)
)

// ScanOutcome is the result of the scan stage. Err is set when the scan tool
// could not be run; Networks is empty in that case.
type ScanOutcome struct {
	Networks []models.NetworkObservation
	RawCount int
	Err      error
}

// Scanner runs the OS WiFi scan utility and turns its output into
// deduplicated observations.
type Scanner struct {
	runner  CommandRunner
	iface   string
	useSudo bool
	timeout time.Duration
	now     func() time.Time
}

func NewScanner(runner CommandRunner, iface string, useSudo bool, timeout time.Duration) *Scanner {
	return &Scanner{
		runner:  runner,
		iface:   iface,
		useSudo: useSudo,
		timeout: timeout,
		now:     time.Now,
	}
}

// Scan brings the interface up and scans. Any failure yields an empty result.
func (s *Scanner) Scan(ctx context.Context) ScanOutcome {
	name, args := withSudo(s.useSudo, "ip", "link", "set", s.iface, "up")
	if _, err := s.runner.Run(ctx, s.timeout, name, args...); err != nil {
		log.Printf("[SCAN] Could not bring %s up: %v", s.iface, err)
		return ScanOutcome{Err: err}
	}

	name, args = withSudo(s.useSudo, "iwlist", s.iface, "scan")
	out, err := s.runner.Run(ctx, s.timeout, name, args...)
	if err != nil {
		log.Printf("[SCAN] Scan on %s failed: %v", s.iface, err)
		return ScanOutcome{Err: err}
	}

	raw := ParseScanOutput(out, s.now())
	unique := DeduplicateByESSID(raw)
	if debugLogging {
		log.Printf("[SCAN] Raw scan: %d entries, %d unique SSIDs", len(raw), len(unique))
	}
	return ScanOutcome{Networks: unique, RawCount: len(raw)}
}

// ParseScanOutput splits iwlist output into one observation per cell. A cell
// starts on a line carrying both "Cell" and "Address:"; lines before the first
// cell are ignored and the last cell is emitted at end of input.
//
// Encryption is last-match-wins over the cell's lines: "Encryption key:on"
// sets WEP/WPA, any later line mentioning WPA sets WPA/WPA2.
func ParseScanOutput(output string, seenAt time.Time) []models.NetworkObservation {
	var (
		networks []models.NetworkObservation
		current  *models.NetworkObservation
	)
	stamp := models.FormatTimestamp(seenAt)

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.Contains(line, "Cell") && strings.Contains(line, "Address:") {
			if current != nil {
				networks = append(networks, *current)
			}
			current = &models.NetworkObservation{
				Timestamp:  stamp,
				Encryption: models.EncryptionOpen,
			}
			if mac := macPattern.FindString(line); mac != "" {
				current.BSSID = mac
			}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case strings.Contains(line, "ESSID:"):
			if m := essidPattern.FindStringSubmatch(line); m != nil {
				current.ESSID = m[1]
			}
		case strings.Contains(line, "Signal level="):
			if m := signalPattern.FindStringSubmatch(line); m != nil {
				if v, err := strconv.Atoi(m[1]); err == nil {
					current.Signal = v
				}
			}
		case strings.Contains(line, "Frequency:"):
			if m := frequencyPattern.FindStringSubmatch(line); m != nil {
				current.Frequency = m[1] + " GHz"
			}
		case strings.Contains(line, "Encryption key:on"):
			current.Encryption = models.EncryptionWEP
		case strings.Contains(line, "WPA"):
			current.Encryption = models.EncryptionWPA
		}
	}

	if current != nil {
		networks = append(networks, *current)
	}
	return networks
}

// DeduplicateByESSID keeps the strongest observation per non-empty ESSID.
// Entries without an ESSID are dropped. Output order follows first sighting.
func DeduplicateByESSID(networks []models.NetworkObservation) []models.NetworkObservation {
	index := make(map[string]int, len(networks))
	unique := make([]models.NetworkObservation, 0, len(networks))

	for _, n := range networks {
		if n.ESSID == "" {
			continue
		}
		i, seen := index[n.ESSID]
		if !seen {
			index[n.ESSID] = len(unique)
			unique = append(unique, n)
			continue
		}
		if n.Signal > unique[i].Signal {
			unique[i] = n
		}
	}
	return unique
}
