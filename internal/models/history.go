package models

// ResultLog is the persisted history document. The JSON shape is shared with
// external consumers and must stay {"probe_results": [...]}.
type ResultLog struct {
	ProbeResults []ProbeSample `json:"probe_results"`
}

// ProbeSample is one probe cycle's record. It is created once per cycle and
// never modified after it has been appended to the store.
type ProbeSample struct {
	Timestamp  string           `json:"timestamp"`
	WifiScan   WifiScan         `json:"wifi_scan"`
	Speedtest  SpeedtestOutcome `json:"speedtest"`
	Ping       PingResults      `json:"ping"`
	SystemInfo SystemInfo       `json:"system_info"`
}

// WifiScan summarises the deduplicated scan of a cycle
type WifiScan struct {
	NetworksFound int                  `json:"networks_found"`
	Networks      []NetworkObservation `json:"networks"`
}

// PingResults holds the outcome for the two fixed targets.
type PingResults struct {
	Google     PingOutcome `json:"google"`
	Cloudflare PingOutcome `json:"cloudflare"`
}

// BothFailed reports whether neither fixed target answered.
func (p PingResults) BothFailed() bool {
	return !p.Google.Success && !p.Cloudflare.Success
}

// PingOutcome is the result of a single ping. A failed ping is always
// {success:false, avg_ms:0}.
type PingOutcome struct {
	AvgMs   float64 `json:"avg_ms"`
	Success bool    `json:"success"`
}

// FailedPing is the canonical failure value.
var FailedPing = PingOutcome{AvgMs: 0, Success: false}
