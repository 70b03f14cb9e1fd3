package engine

import "time"

// EventType identifies the kind of event emitted by the Engine.
type EventType int

const (
	// Screen events
	EventScreenLoaded EventType = iota + 1
	EventScreenFailed

	// Session events
	EventPlantLogin
	EventPlantLogout

	// Config events
	EventODataReconfigured
)

// String returns the wire name used on SSE and the message bus.
func (t EventType) String() string {
	switch t {
	case EventScreenLoaded:
		return "screen.loaded"
	case EventScreenFailed:
		return "screen.failed"
	case EventPlantLogin:
		return "plant.login"
	case EventPlantLogout:
		return "plant.logout"
	case EventODataReconfigured:
		return "odata.reconfigured"
	default:
		return "unknown"
	}
}

// Event is the envelope emitted by the Engine's EventBus.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   interface{}
}

// ScreenLoadedEvent is emitted after a successful fetch.
type ScreenLoadedEvent struct {
	Plant       string `json:"plant"`
	Screen      string `json:"screen"`
	RecordCount int    `json:"record_count"`
	DurationMS  int64  `json:"duration_ms"`
}

// ScreenFailedEvent is emitted when a fetch fails; there is no retry.
type ScreenFailedEvent struct {
	Plant      string `json:"plant"`
	Screen     string `json:"screen"`
	Error      string `json:"error"`
	Timeout    bool   `json:"timeout"`
	DurationMS int64  `json:"duration_ms"`
}

// PlantEvent is emitted on plant login and logout.
type PlantEvent struct {
	Plant string `json:"plant"`
}

// ODataEvent is emitted when the gateway settings change.
type ODataEvent struct {
	BaseURL string `json:"base_url"`
	Actor   string `json:"actor"`
}
