package models

import "time"

// Outage is a windowed sample classified as an outage
type Outage struct {
	Timestamp string `json:"timestamp"`
	Reason    string `json:"reason"`
	Index     int    `json:"index"`
}

// OutageReport is returned by the outages query.
type OutageReport struct {
	Outages             []Outage `json:"outages"`
	OutageCount         int      `json:"outage_count"`
	TotalProbes         int      `json:"total_probes"`
	AvailabilityPercent float64  `json:"availability_percent"`
	Hours               int      `json:"hours"`
}

// Summary holds totals and rolling averages for the dashboard header.
type Summary struct {
	TotalProbes         int          `json:"total_probes"`
	WindowProbes        int          `json:"window_probes"`
	WindowOutages       int          `json:"window_outages"`
	AvailabilityPercent float64      `json:"availability_percent"`
	AvgNetworks         float64      `json:"avg_networks"`
	AvgDownloadMbps     float64      `json:"avg_download_mbps"`
	AvgUploadMbps       float64      `json:"avg_upload_mbps"`
	LastProbe           *time.Time   `json:"last_probe"`
	Latest              *ProbeSample `json:"latest,omitempty"`
	Hours               int          `json:"hours"`
}

// ChartSeries is a set of parallel, timestamp-ordered sequences. Every entry
// in Series has the same length as Labels.
type ChartSeries struct {
	Metric string                `json:"metric"`
	Hours  int                   `json:"hours"`
	Labels []string              `json:"labels"`
	Series map[string][]*float64 `json:"series"`
}
