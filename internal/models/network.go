package models

import "time"

// Encryption classes assigned by the scan parser
const (
	EncryptionOpen = "Open"
	EncryptionWEP  = "WEP/WPA"
	EncryptionWPA  = "WPA/WPA2"
)

// NetworkObservation is one access point seen in a scan.
type NetworkObservation struct {
	Timestamp  string `json:"timestamp"`
	BSSID      string `json:"bssid"`
	ESSID      string `json:"essid"`
	Signal     int    `json:"signal"` // dBm, more negative is weaker
	Frequency  string `json:"frequency"`
	Encryption string `json:"encryption"`
}

// InventoryEntry aggregates every sighting of one ESSID inside a window.
type InventoryEntry struct {
	ESSID      string    `json:"essid"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	MaxSignal  int       `json:"max_signal"`
	Encryption string    `json:"encryption"`
	Count      int       `json:"count"`
	// Known is set for ESSIDs listed under wifi.known_networks.
	Known bool `json:"known"`
}
