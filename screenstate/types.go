package screenstate

import "time"

// Summary describes the most recent activation of a screen for a plant.
type Summary struct {
	Plant       string    `json:"plant"`
	Screen      string    `json:"screen"`
	OK          bool      `json:"ok"`
	RecordCount int       `json:"record_count"`
	Error       string    `json:"error,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	At          time.Time `json:"at"`
}
