package models

import "encoding/json"

// SpeedtestOutcome is either a measurement or an error marker. On the wire a
// failure is encoded as {"error": "..."} only, matching the history format.
type SpeedtestOutcome struct {
	Timestamp    string  `json:"timestamp,omitempty"`
	DownloadMbps float64 `json:"download_mbps"`
	UploadMbps   float64 `json:"upload_mbps"`
	PingMs       float64 `json:"ping_ms"`
	Server       string  `json:"server"`
	ISP          string  `json:"isp"`
	Error        string  `json:"error,omitempty"`
}

// SpeedtestError builds a failure marker.
func SpeedtestError(msg string) SpeedtestOutcome {
	if msg == "" {
		msg = "disabled or failed"
	}
	return SpeedtestOutcome{Error: msg}
}

// Failed reports whether the stage recorded an error.
func (s SpeedtestOutcome) Failed() bool {
	return s.Error != ""
}

type speedtestResult struct {
	Timestamp    string  `json:"timestamp,omitempty"`
	DownloadMbps float64 `json:"download_mbps"`
	UploadMbps   float64 `json:"upload_mbps"`
	PingMs       float64 `json:"ping_ms"`
	Server       string  `json:"server"`
	ISP          string  `json:"isp"`
}

func (s SpeedtestOutcome) MarshalJSON() ([]byte, error) {
	if s.Failed() {
		return json.Marshal(map[string]string{"error": s.Error})
	}
	return json.Marshal(speedtestResult{
		Timestamp:    s.Timestamp,
		DownloadMbps: s.DownloadMbps,
		UploadMbps:   s.UploadMbps,
		PingMs:       s.PingMs,
		Server:       s.Server,
		ISP:          s.ISP,
	})
}

// SpeedtestHistory is the standalone speedtest document.
type SpeedtestHistory struct {
	Tests []SpeedtestOutcome `json:"tests"`
}
