package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wifiprober/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

func sampleAt(at time.Time) models.ProbeSample {
	return models.ProbeSample{
		Timestamp: models.FormatTimestamp(at),
		WifiScan:  models.WifiScan{Networks: []models.NetworkObservation{}},
		Ping: models.PingResults{
			Google:     models.PingOutcome{AvgMs: 10, Success: true},
			Cloudflare: models.PingOutcome{AvgMs: 12, Success: true},
		},
		Speedtest: models.SpeedtestOutcome{DownloadMbps: 50, UploadMbps: 10, Server: "s", ISP: "i"},
	}
}

func timestamps(log models.ResultLog) []string {
	out := make([]string, 0, len(log.ProbeResults))
	for _, s := range log.ProbeResults {
		out = append(out, s.Timestamp)
	}
	return out
}

func TestJSONFileStoreEvictsOldest(t *testing.T) {
	store := NewJSONFileStore(filepath.Join(t.TempDir(), "data", "results.json"), 3)

	var want []string
	for i := 0; i < 5; i++ {
		s := sampleAt(baseTime.Add(time.Duration(i) * time.Minute))
		require.NoError(t, store.Append(s))
		want = append(want, s.Timestamp)
		assert.LessOrEqual(t, len(store.Load().ProbeResults), 3)
	}

	assert.Equal(t, want[2:], timestamps(store.Load()))
	assert.Equal(t, 3, store.Count())
}

func TestJSONFileStoreDocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	store := NewJSONFileStore(path, 10)
	failed := sampleAt(baseTime)
	failed.Speedtest = models.SpeedtestError("disabled")
	require.NoError(t, store.Append(failed))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string][]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc["probe_results"], 1)
	assert.JSONEq(t, `{"error":"disabled"}`, string(doc["probe_results"][0]["speedtest"]))
}

func TestJSONFileStoreMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()

	missing := NewJSONFileStore(filepath.Join(dir, "missing.json"), 10)
	assert.NotNil(t, missing.Load().ProbeResults)
	assert.Empty(t, missing.Load().ProbeResults)
	assert.Zero(t, missing.Count())

	path := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"probe_results": [{"timest`), 0o644))
	corrupt := NewJSONFileStore(path, 10)
	assert.Empty(t, corrupt.Load().ProbeResults)

	// a corrupt document is replaced on the next append
	require.NoError(t, corrupt.Append(sampleAt(baseTime)))
	assert.Len(t, corrupt.Load().ProbeResults, 1)
}

func TestTruncateOldest(t *testing.T) {
	samples := []models.ProbeSample{{Timestamp: "a"}, {Timestamp: "b"}, {Timestamp: "c"}}

	assert.Len(t, truncateOldest(samples, 0), 3)
	assert.Len(t, truncateOldest(samples, 5), 3)
	got := truncateOldest(samples, 2)
	assert.Equal(t, "b", got[0].Timestamp)
	assert.Equal(t, "c", got[1].Timestamp)
}
