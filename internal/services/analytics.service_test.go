package services

import (
	"sync"
	"testing"
	"time"

	"wifiprober/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory ResultStore.
type memStore struct {
	mu      sync.Mutex
	samples []models.ProbeSample
	err     error
}

func (m *memStore) Append(s models.ProbeSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.samples = append(m.samples, s)
	return nil
}

func (m *memStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples)
}

func (m *memStore) Load() models.ResultLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.ResultLog{ProbeResults: append([]models.ProbeSample{}, m.samples...)}
}

var (
	pingOK   = models.PingResults{Google: models.PingOutcome{AvgMs: 10, Success: true}, Cloudflare: models.PingOutcome{AvgMs: 20, Success: true}}
	pingDown = models.PingResults{Google: models.FailedPing, Cloudflare: models.FailedPing}
	pingHalf = models.PingResults{Google: models.FailedPing, Cloudflare: models.PingOutcome{AvgMs: 20, Success: true}}
)

func newTestAnalytics(samples ...models.ProbeSample) *Analytics {
	a := NewAnalytics(&memStore{samples: samples})
	a.now = func() time.Time { return baseTime }
	return a
}

// sampleAgo builds a sample taken d before baseTime.
func sampleAgo(d time.Duration, ping models.PingResults, speed models.SpeedtestOutcome, networks ...models.NetworkObservation) models.ProbeSample {
	return models.ProbeSample{
		Timestamp: models.FormatTimestamp(baseTime.Add(-d)),
		WifiScan:  models.WifiScan{NetworksFound: len(networks), Networks: networks},
		Ping:      ping,
		Speedtest: speed,
	}
}

func speed(down, up float64) models.SpeedtestOutcome {
	return models.SpeedtestOutcome{DownloadMbps: down, UploadMbps: up}
}

func TestOutageClassification(t *testing.T) {
	tests := []struct {
		name   string
		sample models.ProbeSample
		reason string
		outage bool
	}{
		{"both pings failed and speedtest failed", sampleAgo(0, pingDown, models.SpeedtestError("x")), ReasonNoPing, true},
		{"both pings failed", sampleAgo(0, pingDown, speed(50, 10)), ReasonNoPing, true},
		{"speedtest failed", sampleAgo(0, pingOK, models.SpeedtestError("x")), ReasonSpeedtestFailed, true},
		{"speedtest disabled", sampleAgo(0, pingOK, models.SpeedtestError("disabled")), ReasonSpeedtestFailed, true},
		{"speedtest skipped for shutdown", sampleAgo(0, pingOK, models.SpeedtestError(ErrStageSkipped.Error())), "", false},
		{"pings failed before shutdown", sampleAgo(0, pingDown, models.SpeedtestError(ErrStageSkipped.Error())), ReasonNoPing, true},
		{"one ping failed", sampleAgo(0, pingHalf, speed(50, 10)), "", false},
		{"healthy", sampleAgo(0, pingOK, speed(50, 10)), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, outage := outageReason(tt.sample)
			assert.Equal(t, tt.outage, outage)
			assert.Equal(t, tt.reason, reason)
			assert.Equal(t, tt.outage, IsOutage(tt.sample))
		})
	}
}

func TestAvailability(t *testing.T) {
	assert.Equal(t, 100.0, Availability(0, 0))
	assert.Equal(t, 100.0, Availability(0, 7))
	assert.Equal(t, 66.7, Availability(1, 3))
	// halves round to even
	assert.Equal(t, 81.2, Availability(3, 16))
	assert.Equal(t, 93.8, Availability(1, 16))
	assert.Equal(t, 0.0, Availability(4, 4))

	prev := Availability(0, 10)
	for outages := 1; outages <= 10; outages++ {
		cur := Availability(outages, 10)
		assert.Less(t, cur, prev, "outages=%d", outages)
		prev = cur
	}
}

func TestOutagesWindow(t *testing.T) {
	a := newTestAnalytics(
		sampleAgo(30*time.Hour, pingDown, speed(1, 1)), // outside
		sampleAgo(24*time.Hour, pingDown, speed(1, 1)), // exactly on the cutoff, outside
		sampleAgo(3*time.Hour, pingOK, speed(50, 10)),
		sampleAgo(2*time.Hour, pingOK, models.SpeedtestError("x")),
		models.ProbeSample{Timestamp: "garbage", Ping: pingDown},
		sampleAgo(time.Hour, pingDown, models.SpeedtestError("x")),
	)

	report := a.Outages(24)

	assert.Equal(t, 3, report.TotalProbes)
	assert.Equal(t, 2, report.OutageCount)
	assert.Equal(t, 33.3, report.AvailabilityPercent)
	require.Len(t, report.Outages, 2)
	assert.Equal(t, ReasonSpeedtestFailed, report.Outages[0].Reason)
	assert.Equal(t, 1, report.Outages[0].Index)
	assert.Equal(t, ReasonNoPing, report.Outages[1].Reason)
	assert.Equal(t, 2, report.Outages[1].Index)
}

func TestOutagesEmptyStore(t *testing.T) {
	report := newTestAnalytics().Outages(24)

	assert.Equal(t, 0, report.TotalProbes)
	assert.Equal(t, 100.0, report.AvailabilityPercent)
	assert.NotNil(t, report.Outages)
}

func TestWindowAcceptsZuluSuffix(t *testing.T) {
	s := sampleAgo(time.Hour, pingOK, speed(50, 10))
	s.Timestamp += "Z"

	assert.Equal(t, 1, newTestAnalytics(s).Outages(2).TotalProbes)
}

func TestInventory(t *testing.T) {
	home := func(signal int) models.NetworkObservation {
		return models.NetworkObservation{ESSID: "HomeNet", Signal: signal, Encryption: models.EncryptionWPA}
	}
	cafe := models.NetworkObservation{ESSID: "Cafe", Signal: -70, Encryption: models.EncryptionOpen}

	a := newTestAnalytics(
		sampleAgo(48*time.Hour, pingOK, speed(50, 10), home(-10)),
		sampleAgo(3*time.Hour, pingOK, speed(50, 10), home(-55), cafe),
		sampleAgo(2*time.Hour, pingOK, speed(50, 10), home(-45)),
		sampleAgo(time.Hour, pingOK, speed(50, 10), models.NetworkObservation{ESSID: "HomeNet", Signal: -50, Encryption: models.EncryptionOpen}),
	)

	inventory := a.Inventory(24)

	require.Len(t, inventory, 2)
	assert.Equal(t, "HomeNet", inventory[0].ESSID)
	assert.Equal(t, 3, inventory[0].Count)
	assert.Equal(t, -45, inventory[0].MaxSignal)
	assert.Equal(t, models.EncryptionWPA, inventory[0].Encryption, "encryption comes from the first sighting")
	assert.WithinDuration(t, baseTime.Add(-3*time.Hour), inventory[0].FirstSeen, 0)
	assert.WithinDuration(t, baseTime.Add(-time.Hour), inventory[0].LastSeen, 0)
	assert.Equal(t, "Cafe", inventory[1].ESSID)
	assert.Equal(t, 1, inventory[1].Count)
}

func TestInventoryFlagsKnownNetworks(t *testing.T) {
	a := NewAnalytics(&memStore{samples: []models.ProbeSample{
		sampleAgo(time.Hour, pingOK, speed(50, 10),
			models.NetworkObservation{ESSID: "HomeNet", Signal: -40},
			models.NetworkObservation{ESSID: "Neighbour", Signal: -80},
		),
	}}, "HomeNet", "Office")
	a.now = func() time.Time { return baseTime }

	inventory := a.Inventory(24)

	require.Len(t, inventory, 2)
	assert.Equal(t, "HomeNet", inventory[0].ESSID)
	assert.True(t, inventory[0].Known)
	assert.Equal(t, "Neighbour", inventory[1].ESSID)
	assert.False(t, inventory[1].Known)
}

func TestChartEmptyWindow(t *testing.T) {
	a := newTestAnalytics(sampleAgo(48*time.Hour, pingOK, speed(50, 10)))

	for metric, names := range map[string][]string{
		ChartSpeed:    {"download", "upload"},
		ChartNetworks: {"networks"},
		ChartPing:     {TargetGoogle, TargetCloudflare},
	} {
		chart := a.Chart(metric, 24)
		assert.NotNil(t, chart.Labels)
		assert.Empty(t, chart.Labels)
		require.Len(t, chart.Series, len(names), metric)
		for _, name := range names {
			assert.NotNil(t, chart.Series[name], "%s/%s", metric, name)
			assert.Len(t, chart.Series[name], len(chart.Labels))
		}
	}
}

func TestChartSeries(t *testing.T) {
	net := models.NetworkObservation{ESSID: "x"}
	a := newTestAnalytics(
		sampleAgo(2*time.Hour, pingHalf, speed(50, 10), net, net),
		sampleAgo(time.Hour, pingOK, models.SpeedtestError("x")),
	)

	sp := a.Chart(ChartSpeed, 24)
	require.Len(t, sp.Labels, 2)
	require.Len(t, sp.Series["download"], 2)
	assert.Equal(t, 50.0, *sp.Series["download"][0])
	assert.Equal(t, 10.0, *sp.Series["upload"][0])
	assert.Nil(t, sp.Series["download"][1])
	assert.Nil(t, sp.Series["upload"][1])

	pg := a.Chart(ChartPing, 24)
	assert.Nil(t, pg.Series[TargetGoogle][0])
	assert.Equal(t, 20.0, *pg.Series[TargetCloudflare][0])
	assert.Equal(t, 10.0, *pg.Series[TargetGoogle][1])

	nw := a.Chart(ChartNetworks, 24)
	assert.Equal(t, 2.0, *nw.Series["networks"][0])
	assert.Equal(t, 0.0, *nw.Series["networks"][1])
}

func TestValidChartMetric(t *testing.T) {
	assert.True(t, ValidChartMetric(ChartSpeed))
	assert.True(t, ValidChartMetric(ChartNetworks))
	assert.True(t, ValidChartMetric(ChartPing))
	assert.False(t, ValidChartMetric("cpu"))
}

func TestSummary(t *testing.T) {
	net := models.NetworkObservation{ESSID: "x"}
	a := newTestAnalytics(
		sampleAgo(48*time.Hour, pingOK, speed(1, 1)),
		sampleAgo(3*time.Hour, pingOK, speed(40, 8), net),
		sampleAgo(2*time.Hour, pingOK, speed(60, 12), net, net, net),
		sampleAgo(time.Hour, pingDown, models.SpeedtestError("x")),
	)

	s := a.Summary(24)

	assert.Equal(t, 4, s.TotalProbes)
	assert.Equal(t, 3, s.WindowProbes)
	assert.Equal(t, 1, s.WindowOutages)
	assert.Equal(t, 66.7, s.AvailabilityPercent)
	assert.Equal(t, 1.3, s.AvgNetworks)
	assert.Equal(t, 50.0, s.AvgDownloadMbps)
	assert.Equal(t, 10.0, s.AvgUploadMbps)
	require.NotNil(t, s.LastProbe)
	assert.WithinDuration(t, baseTime.Add(-time.Hour), *s.LastProbe, 0)
	require.NotNil(t, s.Latest)
	assert.True(t, s.Latest.Speedtest.Failed())
}

func TestSummaryEmpty(t *testing.T) {
	s := newTestAnalytics().Summary(24)

	assert.Equal(t, 0, s.TotalProbes)
	assert.Equal(t, 100.0, s.AvailabilityPercent)
	assert.Equal(t, 0.0, s.AvgDownloadMbps)
	assert.Nil(t, s.LastProbe)
	assert.Nil(t, s.Latest)
}
