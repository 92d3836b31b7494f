package events

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// EventHub fans events out to subscribers. Slow subscribers miss events
// instead of blocking publishers.
type EventHub struct {
	mu   sync.RWMutex
	subs map[chan Event]string
}

func NewEventHub() *EventHub { return &EventHub{subs: make(map[chan Event]string)} }

// Subscribe returns a channel receiving events of the given session, or of
// every session when session is empty.
func (h *EventHub) Subscribe(session string) chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = session
	h.mu.Unlock()
	return ch
}

func (h *EventHub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *EventHub) Publish(session, name string, payload any) {
	if h == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		logrus.Warnf("failed to marshal %s event: %v", name, err)
		return
	}
	msg := Event{Name: name, Session: session, Data: b}
	h.mu.RLock()
	for ch, filter := range h.subs {
		if filter != "" && filter != session {
			continue
		}
		// Non-blocking send; drop if subscriber is slow
		select {
		case ch <- msg:
		default:
		}
	}
	h.mu.RUnlock()
}
