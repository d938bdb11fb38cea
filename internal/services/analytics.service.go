package services

import (
	"sort"
	"time"

	"wifiprober/internal/models"
)

// Outage reasons
const (
	ReasonNoPing          = "no ping"
	ReasonSpeedtestFailed = "speedtest failed"
)

// Chart metrics accepted by Chart
const (
	ChartSpeed    = "speed"
	ChartNetworks = "networks"
	ChartPing     = "ping"
)

// windowedSample pairs a sample with its parsed timestamp.
type windowedSample struct {
	at     time.Time
	sample models.ProbeSample
}

// Analytics answers windowed queries over a ResultStore. Every query reads
// the store afresh.
type Analytics struct {
	store ResultStore
	known map[string]bool
	now   func() time.Time
}

// NewAnalytics reads samples from store. Inventory entries whose ESSID is in
// knownNetworks are flagged as known.
func NewAnalytics(store ResultStore, knownNetworks ...string) *Analytics {
	known := make(map[string]bool, len(knownNetworks))
	for _, essid := range knownNetworks {
		known[essid] = true
	}
	return &Analytics{store: store, known: known, now: time.Now}
}

// window returns the samples strictly newer than now-hours, oldest first.
// Samples whose timestamp cannot be parsed are skipped one by one.
func (a *Analytics) window(samples []models.ProbeSample, hours int) []windowedSample {
	cutoff := a.now().Add(-time.Duration(hours) * time.Hour)

	recent := make([]windowedSample, 0, len(samples))
	for _, s := range samples {
		at, err := models.ParseTimestamp(s.Timestamp)
		if err != nil {
			continue
		}
		if at.After(cutoff) {
			recent = append(recent, windowedSample{at: at, sample: s})
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].at.Before(recent[j].at)
	})
	return recent
}

// IsOutage reports whether a sample counts as an outage.
func IsOutage(s models.ProbeSample) bool {
	_, ok := outageReason(s)
	return ok
}

// outageReason classifies a sample. Failed pings take priority over a
// failed speedtest.
func outageReason(s models.ProbeSample) (string, bool) {
	if s.Ping.BothFailed() {
		return ReasonNoPing, true
	}
	// a speedtest skipped for shutdown says nothing about the link
	if s.Speedtest.Failed() && s.Speedtest.Error != ErrStageSkipped.Error() {
		return ReasonSpeedtestFailed, true
	}
	return "", false
}

// DetectOutages lists the outages among samples, indexed by position.
func DetectOutages(samples []models.ProbeSample) []models.Outage {
	outages := []models.Outage{}
	for i, s := range samples {
		if reason, ok := outageReason(s); ok {
			outages = append(outages, models.Outage{
				Timestamp: s.Timestamp,
				Reason:    reason,
				Index:     i,
			})
		}
	}
	return outages
}

// Availability is the share of non-outage samples as a percentage with one
// decimal. An empty window is 100% available.
func Availability(outages, total int) float64 {
	if total <= 0 {
		return 100
	}
	return roundTo((1-float64(outages)/float64(total))*100, 1)
}

func unwrap(ws []windowedSample) []models.ProbeSample {
	out := make([]models.ProbeSample, len(ws))
	for i, w := range ws {
		out[i] = w.sample
	}
	return out
}

// Outages reports outages and availability for the trailing window.
func (a *Analytics) Outages(hours int) models.OutageReport {
	recent := unwrap(a.window(a.store.Load().ProbeResults, hours))
	outages := DetectOutages(recent)

	return models.OutageReport{
		Outages:             outages,
		OutageCount:         len(outages),
		TotalProbes:         len(recent),
		AvailabilityPercent: Availability(len(outages), len(recent)),
		Hours:               hours,
	}
}

// Inventory folds every observation in the window into one entry per ESSID.
// Encryption is taken from the first sighting and not revisited.
func (a *Analytics) Inventory(hours int) []models.InventoryEntry {
	recent := a.window(a.store.Load().ProbeResults, hours)

	byESSID := map[string]*models.InventoryEntry{}
	for _, w := range recent {
		for _, n := range w.sample.WifiScan.Networks {
			if n.ESSID == "" {
				continue
			}
			entry, ok := byESSID[n.ESSID]
			if !ok {
				byESSID[n.ESSID] = &models.InventoryEntry{
					ESSID:      n.ESSID,
					FirstSeen:  w.at,
					LastSeen:   w.at,
					MaxSignal:  n.Signal,
					Encryption: n.Encryption,
					Count:      1,
					Known:      a.known[n.ESSID],
				}
				continue
			}
			entry.Count++
			entry.LastSeen = w.at
			if n.Signal > entry.MaxSignal {
				entry.MaxSignal = n.Signal
			}
		}
	}

	inventory := make([]models.InventoryEntry, 0, len(byESSID))
	for _, e := range byESSID {
		inventory = append(inventory, *e)
	}
	sort.Slice(inventory, func(i, j int) bool {
		if inventory[i].Count != inventory[j].Count {
			return inventory[i].Count > inventory[j].Count
		}
		return inventory[i].ESSID < inventory[j].ESSID
	})
	return inventory
}

// ValidChartMetric reports whether metric names a known series set.
func ValidChartMetric(metric string) bool {
	switch metric {
	case ChartSpeed, ChartNetworks, ChartPing:
		return true
	}
	return false
}

func ptr(v float64) *float64 { return &v }

// Chart projects the window into parallel series. A failed ping or a failed
// speedtest is a nil point rather than a numeric placeholder, so every series
// keeps the length of Labels.
func (a *Analytics) Chart(metric string, hours int) models.ChartSeries {
	recent := a.window(a.store.Load().ProbeResults, hours)

	var names []string
	switch metric {
	case ChartSpeed:
		names = []string{"download", "upload"}
	case ChartNetworks:
		names = []string{"networks"}
	case ChartPing:
		names = []string{TargetGoogle, TargetCloudflare}
	}

	chart := models.ChartSeries{
		Metric: metric,
		Hours:  hours,
		Labels: make([]string, 0, len(recent)),
		Series: make(map[string][]*float64, len(names)),
	}
	for _, name := range names {
		chart.Series[name] = make([]*float64, 0, len(recent))
	}

	for _, w := range recent {
		s := w.sample
		chart.Labels = append(chart.Labels, s.Timestamp)

		switch metric {
		case ChartSpeed:
			var down, up *float64
			if !s.Speedtest.Failed() {
				down, up = ptr(s.Speedtest.DownloadMbps), ptr(s.Speedtest.UploadMbps)
			}
			chart.Series["download"] = append(chart.Series["download"], down)
			chart.Series["upload"] = append(chart.Series["upload"], up)
		case ChartNetworks:
			chart.Series["networks"] = append(chart.Series["networks"], ptr(float64(s.WifiScan.NetworksFound)))
		case ChartPing:
			chart.Series[TargetGoogle] = append(chart.Series[TargetGoogle], latencyPoint(s.Ping.Google))
			chart.Series[TargetCloudflare] = append(chart.Series[TargetCloudflare], latencyPoint(s.Ping.Cloudflare))
		}
	}
	return chart
}

func latencyPoint(p models.PingOutcome) *float64 {
	if !p.Success {
		return nil
	}
	return ptr(p.AvgMs)
}

// Summary returns totals and rolling averages. Averages are arithmetic means
// and are 0 for an empty set.
func (a *Analytics) Summary(hours int) models.Summary {
	all := a.store.Load().ProbeResults
	recent := a.window(all, hours)
	samples := unwrap(recent)
	outages := DetectOutages(samples)

	summary := models.Summary{
		TotalProbes:         a.store.Count(),
		WindowProbes:        len(recent),
		WindowOutages:       len(outages),
		AvailabilityPercent: Availability(len(outages), len(recent)),
		Hours:               hours,
	}

	var networks, downloads, uploads []float64
	for _, s := range samples {
		networks = append(networks, float64(s.WifiScan.NetworksFound))
		if !s.Speedtest.Failed() {
			downloads = append(downloads, s.Speedtest.DownloadMbps)
			uploads = append(uploads, s.Speedtest.UploadMbps)
		}
	}
	summary.AvgNetworks = roundTo(mean(networks), 1)
	summary.AvgDownloadMbps = roundTo(mean(downloads), 2)
	summary.AvgUploadMbps = roundTo(mean(uploads), 2)

	if n := len(all); n > 0 {
		latest := all[n-1]
		summary.Latest = &latest
		if at, err := models.ParseTimestamp(latest.Timestamp); err == nil {
			summary.LastProbe = &at
		}
	}
	return summary
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
