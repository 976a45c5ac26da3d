package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (s *recordingSink) Deliver(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("delivery refused")
	}
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestDispatcher_DeliversToAllSinks(t *testing.T) {
	first := &recordingSink{}
	second := &recordingSink{}
	d := NewDispatcher(8, first, second)
	d.Start()

	d.Publish(Event{Kind: KindNewSale, ExternalID: "sale-1", Summary: "sale #1"})
	d.Publish(Event{Kind: KindLowStock, ExternalID: "batch-1", Summary: "low"})
	d.Stop()

	require.Len(t, first.Events(), 2)
	require.Len(t, second.Events(), 2)
	assert.Equal(t, KindNewSale, first.Events()[0].Kind)
	assert.False(t, first.Events()[0].At.IsZero(), "publish stamps the event time")
}

func TestDispatcher_FailingSinkDoesNotBlockOthers(t *testing.T) {
	failing := &recordingSink{fail: true}
	healthy := &recordingSink{}
	d := NewDispatcher(8, failing, healthy)
	d.Start()

	d.Publish(Event{Kind: KindSaleItems, ExternalID: "sale-1"})
	d.Stop()

	assert.Len(t, healthy.Events(), 1)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(1, sink)
	// Consumer not started: the buffer holds one event, the rest drop.
	d.Publish(Event{Kind: KindNewSale, ExternalID: "sale-1"})
	d.Publish(Event{Kind: KindNewSale, ExternalID: "sale-2"})

	d.Start()
	d.Stop()

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "sale-1", events[0].ExternalID)
}

func TestDispatcher_GateMutesPublishing(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(8, sink)

	enabled := false
	d.SetGate(func() bool { return enabled })
	d.Start()

	d.Publish(Event{Kind: KindNewSale, ExternalID: "muted"})
	enabled = true
	d.Publish(Event{Kind: KindNewSale, ExternalID: "delivered"})
	d.Stop()

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "delivered", events[0].ExternalID)
}

func TestDispatcher_StopIsIdempotent(t *testing.T) {
	d := NewDispatcher(8, &recordingSink{})
	d.Start()
	d.Stop()
	d.Stop()
}
