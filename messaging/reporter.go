package messaging

import (
	"log"

	"shopfloor/engine"
	"shopfloor/store"
)

// Reporter turns portal activity on the event bus into outbox rows.
type Reporter struct {
	db      *store.DB
	station string
	topic   string

	bus   *engine.EventBus
	subID engine.SubscriberID
}

// NewReporter creates a reporter publishing on topic for station.
func NewReporter(db *store.DB, station, topic string) *Reporter {
	return &Reporter{db: db, station: station, topic: topic}
}

// Attach subscribes the reporter to screen and session events.
func (r *Reporter) Attach(bus *engine.EventBus) {
	r.bus = bus
	r.subID = bus.SubscribeTypes(r.handle,
		engine.EventScreenLoaded,
		engine.EventScreenFailed,
		engine.EventPlantLogin,
		engine.EventPlantLogout,
	)
}

// Detach stops reporting.
func (r *Reporter) Detach() {
	if r.bus != nil {
		r.bus.Unsubscribe(r.subID)
		r.bus = nil
	}
}

func (r *Reporter) handle(evt engine.Event) {
	msgType := evt.Type.String()
	env, err := NewEnvelope(msgType, r.station, evt.Timestamp, evt.Payload)
	if err != nil {
		log.Printf("reporter: build %s: %v", msgType, err)
		return
	}
	data, err := env.Encode()
	if err != nil {
		log.Printf("reporter: encode %s: %v", msgType, err)
		return
	}
	if err := r.db.EnqueueOutbox(r.topic, data, msgType); err != nil {
		log.Printf("reporter: enqueue %s: %v", msgType, err)
	}
}
