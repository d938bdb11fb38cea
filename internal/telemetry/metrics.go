package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ProbeCycles counts completed probe cycles
	ProbeCycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wifiprober",
			Name:      "probe_cycles_total",
			Help:      "Total number of completed probe cycles",
		},
	)

	// StageFailures counts failed probe stages by stage name
	StageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifiprober",
			Name:      "stage_failures_total",
			Help:      "Total number of failed probe stages",
		},
		[]string{"stage"},
	)

	// CycleDuration observes how long a full probe cycle takes
	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "wifiprober",
			Name:      "probe_cycle_duration_seconds",
			Help:      "Duration of a probe cycle from ping to alert check",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		},
	)

	// PingLatency is the latest live latency per target, 0 when failing
	PingLatency = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wifiprober",
			Name:      "ping_latency_ms",
			Help:      "Latest live ping latency per target",
		},
		[]string{"target"},
	)

	// PingUp is 1 when the latest live ping to the target succeeded
	PingUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wifiprober",
			Name:      "ping_up",
			Help:      "Whether the latest live ping to the target succeeded",
		},
		[]string{"target"},
	)

	// IncidentActive is 1 while a live incident is open
	IncidentActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wifiprober",
			Name:      "incident_active",
			Help:      "Whether a live connectivity incident is active",
		},
	)

	// IncidentTransitions counts incident state changes by direction
	IncidentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifiprober",
			Name:      "incident_transitions_total",
			Help:      "Total number of incident activations and clears",
		},
		[]string{"to"},
	)

	// NetworksVisible is the deduplicated network count of the last scan
	NetworksVisible = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wifiprober",
			Name:      "networks_visible",
			Help:      "Number of unique SSIDs seen in the latest scan",
		},
	)

	// DownloadMbps is the latest successful speedtest download rate
	DownloadMbps = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wifiprober",
			Name:      "download_mbps",
			Help:      "Download rate of the latest successful speedtest",
		},
	)

	// RescanRequests counts rescan requests by outcome
	RescanRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifiprober",
			Name:      "rescan_requests_total",
			Help:      "Total number of rescan requests",
		},
		[]string{"outcome"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the default registry. It is safe to
// call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(ProbeCycles)
		prometheus.DefaultRegisterer.Register(StageFailures)
		prometheus.DefaultRegisterer.Register(CycleDuration)
		prometheus.DefaultRegisterer.Register(PingLatency)
		prometheus.DefaultRegisterer.Register(PingUp)
		prometheus.DefaultRegisterer.Register(IncidentActive)
		prometheus.DefaultRegisterer.Register(IncidentTransitions)
		prometheus.DefaultRegisterer.Register(NetworksVisible)
		prometheus.DefaultRegisterer.Register(DownloadMbps)
		prometheus.DefaultRegisterer.Register(RescanRequests)
	})
}
