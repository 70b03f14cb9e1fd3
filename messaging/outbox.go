package messaging

import (
	"log"
	"sync"
	"time"

	"shopfloor/store"
)

// maxOutboxRetries is the publish attempt limit before a row is left behind.
const maxOutboxRetries = 10

// OutboxDrainer periodically publishes pending outbox messages.
type OutboxDrainer struct {
	db        *store.DB
	publisher Publisher
	interval  time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewOutboxDrainer creates a new outbox drainer.
func NewOutboxDrainer(db *store.DB, publisher Publisher, interval time.Duration) *OutboxDrainer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OutboxDrainer{
		db:        db,
		publisher: publisher,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the outbox drain loop.
func (d *OutboxDrainer) Start() {
	d.wg.Add(1)
	go d.drainLoop()
}

// Stop stops the drain loop and waits for it to exit.
func (d *OutboxDrainer) Stop() {
	select {
	case <-d.stopChan:
	default:
		close(d.stopChan)
	}
	d.wg.Wait()
}

func (d *OutboxDrainer) drainLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopChan:
			return
		case <-ticker.C:
			d.Drain()
		}
	}
}

// Drain publishes one batch of pending messages and returns how many
// were acknowledged.
func (d *OutboxDrainer) Drain() int {
	if !d.publisher.IsConnected() {
		return 0
	}

	msgs, err := d.db.ListPendingOutbox(maxOutboxRetries, 50)
	if err != nil {
		log.Printf("outbox: list pending: %v", err)
		return 0
	}

	sent := 0
	for _, msg := range msgs {
		if err := d.publisher.Publish(msg.Topic, msg.Payload); err != nil {
			log.Printf("outbox: publish %d (%s): %v", msg.ID, msg.MsgType, err)
			if err := d.db.IncrementOutboxRetries(msg.ID); err != nil {
				log.Printf("outbox: retry count %d: %v", msg.ID, err)
			}
			continue
		}
		if err := d.db.AckOutbox(msg.ID); err != nil {
			log.Printf("outbox: ack %d: %v", msg.ID, err)
			continue
		}
		sent++
	}
	return sent
}
