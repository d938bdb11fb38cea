package services

import (
	"context"
	"testing"
	"time"

	"wifiprober/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iwlistOutput = `wlan0     Scan completed :
          Cell 01 - Address: AA:BB:CC:DD:EE:01
                    Channel:6
                    Frequency:2.437 GHz (Channel 6)
                    Quality=70/70  Signal level=-40 dBm
                    Encryption key:on
                    ESSID:"HomeNet"
                    IE: IEEE 802.11i/WPA2 Version 1
          Cell 02 - Address: AA:BB:CC:DD:EE:02
                    Frequency:5.18 GHz (Channel 36)
                    Quality=40/70  Signal level=-60 dBm
                    Encryption key:off
                    ESSID:"Cafe"
          Cell 03 - Address: AA:BB:CC:DD:EE:03
                    Quality=20/70  Signal level=-75 dBm
                    Encryption key:on
                    ESSID:""`

func TestParseScanOutput(t *testing.T) {
	seen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	networks := ParseScanOutput(iwlistOutput, seen)

	require.Len(t, networks, 3, "last cell without trailing marker must be emitted")

	assert.Equal(t, models.NetworkObservation{
		Timestamp:  models.FormatTimestamp(seen),
		BSSID:      "AA:BB:CC:DD:EE:01",
		ESSID:      "HomeNet",
		Signal:     -40,
		Frequency:  "2.437 GHz",
		Encryption: models.EncryptionWPA,
	}, networks[0])

	assert.Equal(t, "Cafe", networks[1].ESSID)
	assert.Equal(t, -60, networks[1].Signal)
	assert.Equal(t, "5.18 GHz", networks[1].Frequency)
	assert.Equal(t, models.EncryptionOpen, networks[1].Encryption)

	assert.Equal(t, "", networks[2].ESSID)
	assert.Equal(t, models.EncryptionWEP, networks[2].Encryption)
}

func TestParseScanOutputEncryptionIsLastMatch(t *testing.T) {
	out := `Cell 01 - Address: 00:11:22:33:44:55
        ESSID:"Legacy"
        IE: WPA Version 1
        Encryption key:on`

	networks := ParseScanOutput(out, time.Now())
	require.Len(t, networks, 1)
	assert.Equal(t, models.EncryptionWEP, networks[0].Encryption)
}

func TestParseScanOutputIgnoresLinesBeforeFirstCell(t *testing.T) {
	out := `wlan0 Scan completed :
        ESSID:"Ghost"
        Signal level=-30 dBm`

	assert.Empty(t, ParseScanOutput(out, time.Now()))
	assert.Empty(t, ParseScanOutput("", time.Now()))
}

func TestDeduplicateByESSID(t *testing.T) {
	in := []models.NetworkObservation{
		{ESSID: "Dup", BSSID: "weak", Signal: -60},
		{ESSID: "Other", Signal: -70},
		{ESSID: "", Signal: -20},
		{ESSID: "Dup", BSSID: "strong", Signal: -40},
		{ESSID: "Dup", BSSID: "weaker", Signal: -80},
	}

	out := DeduplicateByESSID(in)

	require.Len(t, out, 2)
	assert.Equal(t, "Dup", out[0].ESSID)
	assert.Equal(t, "strong", out[0].BSSID)
	assert.Equal(t, -40, out[0].Signal)
	assert.Equal(t, "Other", out[1].ESSID)
	for _, n := range out {
		assert.NotEmpty(t, n.ESSID)
	}
}

func TestScannerScan(t *testing.T) {
	runner := newFakeRunner().
		on("sudo ip link set wlan0 up", "").
		on("sudo iwlist wlan0 scan", iwlistOutput)

	outcome := NewScanner(runner, "wlan0", true, time.Second).Scan(context.Background())

	require.NoError(t, outcome.Err)
	assert.Equal(t, 3, outcome.RawCount)
	assert.Len(t, outcome.Networks, 2)
	assert.Equal(t, []string{"sudo ip link set wlan0 up", "sudo iwlist wlan0 scan"}, runner.Calls())
}

func TestScannerScanFailure(t *testing.T) {
	runner := newFakeRunner().on("ip link set wlan0 up", "")

	outcome := NewScanner(runner, "wlan0", false, time.Second).Scan(context.Background())

	assert.Error(t, outcome.Err)
	assert.Empty(t, outcome.Networks)
}

func TestScannerScanTimeout(t *testing.T) {
	runner := newFakeRunner().
		on("ip link set wlan0 up", "").
		on("iwlist wlan0 scan", iwlistOutput)
	runner.delay["iwlist wlan0 scan"] = time.Minute

	start := time.Now()
	outcome := NewScanner(runner, "wlan0", false, 20*time.Millisecond).Scan(context.Background())

	assert.ErrorIs(t, outcome.Err, ErrCommandTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}
