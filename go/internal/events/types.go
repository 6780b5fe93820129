package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published for each board.
const (
	EventPhaseChanged   = "PhaseChanged"
	EventScoreChanged   = "ScoreChanged"
	EventMatchConcluded = "MatchConcluded"
	EventActivated      = "Activated"
)

// Event is one envelope handed to a Publisher.
type Event struct {
	ID        uuid.UUID
	DeviceID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
