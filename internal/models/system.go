package models

import "time"

// SystemInfo is the host snapshot stored with each probe sample.
type SystemInfo struct {
	Timestamp           string  `json:"timestamp"`
	Uptime              string  `json:"uptime"`
	MemoryUsage         string  `json:"memory_usage"`
	WifiInterfaceStatus string  `json:"wifi_interface_status"`
	WifiIPAddress       *string `json:"wifi_ip_address"`
}

// ResourceStatus is an instantaneous host resource reading.
type ResourceStatus struct {
	CPUPercent   float64  `json:"cpu_percent"`
	RAMPercent   float64  `json:"ram_percent"`
	DiskPercent  float64  `json:"disk_percent"`
	TemperatureC *float64 `json:"temperature_c"`
}

// LiveMetrics is the snapshot published once per live tick. Values are never
// mutated after publication.
type LiveMetrics struct {
	Timestamp time.Time              `json:"timestamp"`
	Ping      map[string]PingOutcome `json:"ping"`
	ResourceStatus
}

// LiveSnapshot is what observers of the live view receive.
type LiveSnapshot struct {
	Metrics  *LiveMetrics `json:"metrics"`
	Incident Incident     `json:"incident"`
}

// LiveHistoryPoint is one live tick kept for the short-range history view.
type LiveHistoryPoint struct {
	Timestamp    time.Time          `json:"timestamp"`
	PingMs       map[string]float64 `json:"ping_ms"`
	CPUPercent   float64            `json:"cpu_percent"`
	RAMPercent   float64            `json:"ram_percent"`
	IncidentOpen bool               `json:"incident_active"`
}
