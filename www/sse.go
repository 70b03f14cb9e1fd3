package www

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"shopfloor/engine"
)

// SSEEvent is the typed envelope sent to SSE clients. Plant scopes the
// event to that plant's browsers; an empty Plant reaches everyone.
type SSEEvent struct {
	Type  string      `json:"type"`
	Plant string      `json:"-"`
	Data  interface{} `json:"data"`
}

type sseClient struct {
	plant  string
	events chan SSEEvent
}

// EventHub manages SSE client connections and broadcasts.
type EventHub struct {
	mu        sync.RWMutex
	clients   map[*sseClient]struct{}
	broadcast chan SSEEvent
	stopChan  chan struct{}
}

// NewEventHub creates a new EventHub.
func NewEventHub() *EventHub {
	return &EventHub{
		clients:   make(map[*sseClient]struct{}),
		broadcast: make(chan SSEEvent, 256),
		stopChan:  make(chan struct{}),
	}
}

// Start begins the event fan-out loop.
func (h *EventHub) Start() {
	go h.run()
}

// Stop shuts down the event hub.
func (h *EventHub) Stop() {
	select {
	case <-h.stopChan:
	default:
		close(h.stopChan)
	}
}

// Broadcast queues an event for fan-out. Events are dropped when the
// queue is full.
func (h *EventHub) Broadcast(evt SSEEvent) {
	select {
	case h.broadcast <- evt:
	default:
	}
}

func (h *EventHub) register(c *sseClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *EventHub) unregister(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	close(c.events)
	h.mu.Unlock()
}

func (h *EventHub) run() {
	for {
		select {
		case <-h.stopChan:
			return
		case evt := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				if evt.Plant != "" && evt.Plant != c.plant {
					continue
				}
				select {
				case c.events <- evt:
				default:
					// slow client
				}
			}
			h.mu.RUnlock()
		}
	}
}

// sseKeepalive is how often an idle stream gets a comment line so proxies
// keep it open.
const sseKeepalive = 30 * time.Second

// Serve streams events for plant until the request ends or the hub stops.
func (h *EventHub) Serve(w http.ResponseWriter, r *http.Request, plant string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}
	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")

	client := &sseClient{plant: plant, events: make(chan SSEEvent, 64)}
	h.register(client)
	defer h.unregister(client)

	send := func(frame string) {
		io.WriteString(w, frame)
		flusher.Flush()
	}
	send(formatFrame("connected", []byte(`{"plant":`+strconv.Quote(plant)+`}`)))

	idle := time.NewTicker(sseKeepalive)
	defer idle.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.stopChan:
			return
		case evt, ok := <-client.events:
			if !ok {
				return
			}
			data, err := json.Marshal(evt.Data)
			if err != nil {
				log.Printf("sse: encode %s: %v", evt.Type, err)
				continue
			}
			send(formatFrame(evt.Type, data))
		case <-idle.C:
			send(": keepalive\n\n")
		}
	}
}

func formatFrame(name string, data []byte) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", name, data)
}

// sseEventFor maps an engine event to its browser form.
func sseEventFor(evt engine.Event) (SSEEvent, bool) {
	switch p := evt.Payload.(type) {
	case engine.ScreenLoadedEvent:
		return SSEEvent{Type: "screen-loaded", Plant: p.Plant, Data: p}, true
	case engine.ScreenFailedEvent:
		return SSEEvent{Type: "screen-failed", Plant: p.Plant, Data: p}, true
	case engine.PlantEvent:
		name := "plant-login"
		if evt.Type == engine.EventPlantLogout {
			name = "plant-logout"
		}
		return SSEEvent{Type: name, Plant: p.Plant, Data: p}, true
	case engine.ODataEvent:
		return SSEEvent{Type: "odata-config", Data: map[string]string{"base_url": p.BaseURL}}, true
	default:
		return SSEEvent{}, false
	}
}

// SetupEngineListeners wires engine events to SSE broadcasts.
func (h *EventHub) SetupEngineListeners(eng *engine.Engine) {
	eng.Events.Subscribe(func(evt engine.Event) {
		if sseEvt, ok := sseEventFor(evt); ok {
			h.Broadcast(sseEvt)
		}
	})
	log.Printf("sse: listeners wired to engine events")
}
