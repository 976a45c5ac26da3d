// Package notify is the event boundary between the sync engine and the
// Telegram delivery layer. Reconcilers publish change events fire-and-forget;
// delivery failures never propagate back into the sync path.
package notify

import (
	"log"
	"sync"
	"time"
)

type Kind string

const (
	KindNewSale   Kind = "new_sale"
	KindSaleItems Kind = "sale_items"
	KindLowStock  Kind = "low_stock"
)

// Event describes one detected change worth telling a doctor or supplier
// about.
type Event struct {
	Kind       Kind      `json:"kind"`
	ExternalID string    `json:"external_id"`
	DoctorCode string    `json:"doctor_code,omitempty"`
	Summary    string    `json:"summary"`
	At         time.Time `json:"at"`
}

// Sink consumes events. The Telegram bot implements this outside the sync
// engine; tests substitute a recording sink.
type Sink interface {
	Deliver(Event) error
}

// LogSink is the default sink: it only logs, used when no bot is wired.
type LogSink struct{}

func (LogSink) Deliver(e Event) error {
	log.Printf("Notify: %s %s (%s)", e.Kind, e.ExternalID, e.Summary)
	return nil
}

// Dispatcher fans events out to sinks from a single consumer goroutine. The
// publish side never blocks: when the buffer is full the event is dropped
// with a log line, because losing a notification is acceptable and stalling
// a sync run is not.
type Dispatcher struct {
	events chan Event
	sinks  []Sink
	gate   func() bool

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// NewDispatcher creates a dispatcher with the given buffer size and sinks.
func NewDispatcher(buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	if len(sinks) == 0 {
		sinks = []Sink{LogSink{}}
	}
	return &Dispatcher{
		events: make(chan Event, buffer),
		sinks:  sinks,
		done:   make(chan struct{}),
	}
}

// Start launches the consumer goroutine.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		go func() {
			defer close(d.done)
			for event := range d.events {
				for _, sink := range d.sinks {
					if err := sink.Deliver(event); err != nil {
						log.Printf("Notify: delivery of %s %s failed: %v", event.Kind, event.ExternalID, err)
					}
				}
			}
		}()
	})
}

// SetGate installs a predicate consulted on every publish. A false return
// silently discards the event; admins use it to mute notifications without
// stopping syncs. Must be set before Start.
func (d *Dispatcher) SetGate(gate func() bool) {
	d.gate = gate
}

// Publish enqueues an event without blocking.
func (d *Dispatcher) Publish(event Event) {
	if d.gate != nil && !d.gate() {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	select {
	case d.events <- event:
	default:
		log.Printf("Notify: queue full, dropping %s %s", event.Kind, event.ExternalID)
	}
}

// Stop drains the queue and waits for the consumer to exit.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.events)
		<-d.done
	})
}
