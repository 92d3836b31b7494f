package events

import "encoding/json"

// Event name constants
const (
	CellsRegistered = "cells.registered"
	CellUpdated     = "cell.updated"
	SessionReset    = "session.reset"
)

// Event is a generic SSE event from the daemon.
type Event struct {
	Name    string          // SSE event name
	Session string          // ID of the session the event belongs to
	Data    json.RawMessage // Raw JSON payload
}

// CellsRegisteredEvent is the typed payload for cells.registered.
type CellsRegisteredEvent struct {
	Session string   `json:"session"`
	Keys    []string `json:"keys"`
	Ts      int64    `json:"ts"`
}

// CellUpdatedEvent is the typed payload for cell.updated.
type CellUpdatedEvent struct {
	Session  string  `json:"session"`
	Key      string  `json:"key"`
	Current  float64 `json:"current"`
	Capacity float64 `json:"capacity"`
	Ts       int64   `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// If Data is empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
