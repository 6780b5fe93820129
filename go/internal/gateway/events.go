package gateway

import (
	"encoding/json"
	"time"
)

// DisplayEvent is the frame pushed to every display connection.
type DisplayEvent struct {
	ID        string          `json:"id"`
	DeviceID  string          `json:"device_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type EventType string

const (
	// EventTypeSnapshot carries a full session.Snapshot.
	EventTypeSnapshot EventType = "Snapshot"
	// EventTypeSound carries a session.SoundTrigger.
	EventTypeSound          EventType = "Sound"
	EventTypeMatchConcluded EventType = "MatchConcluded"
)
