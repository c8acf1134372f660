package types

import "time"

// EventType names a websocket push.
type EventType string

const EventBadgeUnlocked EventType = "badge.unlocked"

// Event is the envelope written to every connected device.
type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp string    `json:"timestamp"`
}

// NewEvent stamps data with the current UTC time in RFC 3339.
func NewEvent(eventType EventType, data any) *Event {
	return &Event{Type: eventType, Data: data, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}
