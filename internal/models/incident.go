package models

import "time"

// Incident is the edge-triggered connectivity record kept by the live sampler
type Incident struct {
	ID       string     `json:"id,omitempty"`
	Active   bool       `json:"active"`
	Type     string     `json:"type,omitempty"`
	Severity string     `json:"severity,omitempty"`
	Since    *time.Time `json:"since,omitempty"`
	Message  string     `json:"message,omitempty"`
}

// Alert is one line of the append-only alert log.
type Alert struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}
