package services

import (
	"sync"
	"time"

	"wifiprober/internal/models"
)

// LiveHistory keeps the most recent live ticks in memory. It is fed from the
// live sampler and is lost on restart; the persisted probe log is the long
// term record.
type LiveHistory struct {
	mu            sync.RWMutex
	points        []models.LiveHistoryPoint
	maxDataPoints int
	now           func() time.Time
}

func NewLiveHistory(maxDataPoints int) *LiveHistory {
	if maxDataPoints <= 0 {
		maxDataPoints = 600
	}
	return &LiveHistory{maxDataPoints: maxDataPoints, now: time.Now}
}

// Record appends one snapshot. Snapshots without metrics are ignored.
func (h *LiveHistory) Record(snap models.LiveSnapshot) {
	m := snap.Metrics
	if m == nil {
		return
	}

	// Failed pings are kept as absent keys so charts show a gap.
	point := models.LiveHistoryPoint{
		Timestamp:    m.Timestamp,
		PingMs:       make(map[string]float64, len(m.Ping)),
		CPUPercent:   m.CPUPercent,
		RAMPercent:   m.RAMPercent,
		IncidentOpen: snap.Incident.Active,
	}
	for name, p := range m.Ping {
		if p.Success {
			point.PingMs[name] = p.AvgMs
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.points = append(h.points, point)
	if len(h.points) > h.maxDataPoints {
		h.points = h.points[len(h.points)-h.maxDataPoints:]
	}
}

// Since returns the points newer than now minus d, oldest first.
func (h *LiveHistory) Since(d time.Duration) []models.LiveHistoryPoint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cutoff := h.now().Add(-d)
	filtered := []models.LiveHistoryPoint{}
	for _, p := range h.points {
		if p.Timestamp.After(cutoff) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
