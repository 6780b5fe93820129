package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogPublisher writes events to the log instead of a broker. It is used when
// no NATS URL is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	log.Info().
		Str("event_id", event.ID.String()).
		Str("event_type", event.EventType).
		Str("device_id", event.DeviceID).
		RawJSON("payload", event.Payload).
		Msg("event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
