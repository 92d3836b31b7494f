package events

import (
	"testing"
)

func TestPublishFiltersBySession(t *testing.T) {
	h := NewEventHub()
	all := h.Subscribe("")
	onlyA := h.Subscribe("a")
	defer h.Unsubscribe(all)
	defer h.Unsubscribe(onlyA)

	h.Publish("b", CellUpdated, CellUpdatedEvent{Session: "b", Key: "cell_1_lfp", Capacity: 6.4})
	h.Publish("a", CellsRegistered, CellsRegisteredEvent{Session: "a", Keys: []string{"cell_1_nmc"}})

	ev := <-all
	if ev.Name != CellUpdated || ev.Session != "b" {
		t.Fatalf("unexpected first event: %+v", ev)
	}
	upd, err := DecodeAs[CellUpdatedEvent](ev)
	if err != nil {
		t.Fatalf("DecodeAs returned error: %v", err)
	}
	if upd.Capacity != 6.4 {
		t.Fatalf("expected capacity 6.4, got %v", upd.Capacity)
	}
	if ev := <-all; ev.Name != CellsRegistered {
		t.Fatalf("unexpected second event: %+v", ev)
	}

	ev = <-onlyA
	if ev.Session != "a" {
		t.Fatalf("filtered subscriber got event of session %q", ev.Session)
	}
	select {
	case ev := <-onlyA:
		t.Fatalf("unexpected extra event: %+v", ev)
	default:
	}
}

func TestPublishDropsForSlowSubscribers(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe("")
	defer h.Unsubscribe(ch)

	for i := 0; i < 100; i++ {
		h.Publish("s", CellUpdated, CellUpdatedEvent{})
	}
	if got := len(ch); got != cap(ch) {
		t.Fatalf("expected buffer to be full (%d), got %d", cap(ch), got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe("")
	h.Unsubscribe(ch)
	h.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
}

func TestNilHubPublish(t *testing.T) {
	var h *EventHub
	h.Publish("s", CellUpdated, nil)
}

func TestDecodeAsEmpty(t *testing.T) {
	v, err := DecodeAs[CellUpdatedEvent](Event{})
	if err != nil || v != (CellUpdatedEvent{}) {
		t.Fatalf("DecodeAs on empty data = %+v, %v", v, err)
	}
}
