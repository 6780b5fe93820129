package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtclock/go/internal/session"
)

type RelayConfig struct {
	QueueSize  int
	MaxRetries int
	RetryDelay time.Duration
	Clock      clockwork.Clock
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		QueueSize:  256,
		MaxRetries: 3,
		RetryDelay: time.Second,
		Clock:      clockwork.NewRealClock(),
	}
}

// Relay turns session notices into events and publishes them from its own
// goroutine. Notify never blocks the session; when the queue is full the
// event is dropped and logged.
type Relay struct {
	publisher Publisher
	config    RelayConfig
	queue     chan Event
	done      chan struct{}
}

func NewRelay(publisher Publisher, cfg RelayConfig) *Relay {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Relay{
		publisher: publisher,
		config:    cfg,
		queue:     make(chan Event, cfg.QueueSize),
		done:      make(chan struct{}),
	}
}

func (r *Relay) Notify(n session.Notice) {
	event, ok, err := FromNotice(n, r.config.Clock.Now())
	if err != nil {
		log.Error().Err(err).Str("notice", string(n.Type)).Msg("failed to build event")
		return
	}
	if !ok {
		return
	}
	select {
	case r.queue <- event:
	default:
		log.Warn().
			Str("event_type", event.EventType).
			Str("event_id", event.ID.String()).
			Msg("event queue full, dropping event")
	}
}

// Run publishes queued events until ctx is cancelled. Events still queued at
// that point get one publish attempt each.
func (r *Relay) Run(ctx context.Context) {
	defer close(r.done)
	log.Info().Int("queue_size", r.config.QueueSize).Msg("event relay started")

	for {
		select {
		case event := <-r.queue:
			if err := r.publishWithRetry(ctx, event); err != nil {
				log.Error().Err(err).
					Str("event_id", event.ID.String()).
					Str("event_type", event.EventType).
					Msg("failed to publish event")
			}
		case <-ctx.Done():
			r.drain()
			log.Info().Msg("event relay stopped")
			return
		}
	}
}

// Done is closed once Run has returned.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

func (r *Relay) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-r.queue:
			if err := r.publisher.Publish(ctx, event); err != nil {
				log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to publish event during shutdown")
			}
		default:
			return
		}
	}
}

func (r *Relay) publishWithRetry(ctx context.Context, event Event) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.config.Clock.After(r.config.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := r.publisher.Publish(ctx, event); err != nil {
			lastErr = err
			log.Warn().Err(err).
				Str("event_id", event.ID.String()).
				Int("attempt", attempt+1).
				Msg("failed to publish event, retrying")
			continue
		}
		return nil
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// FromNotice maps a session notice to an event. ok is false for notices that
// are not published (ticks, sounds, plain state changes).
func FromNotice(n session.Notice, now time.Time) (Event, bool, error) {
	snap := n.Snapshot
	var (
		eventType string
		payload   any
	)

	switch n.Type {
	case session.NoticePhaseChanged:
		eventType = EventPhaseChanged
		payload = PhaseChangedPayload{
			From:            string(n.From),
			To:              string(n.To),
			PhaseLabel:      snap.PhaseLabel,
			TimeLeftSeconds: snap.Clock.TimeLeftSeconds,
			IsRunning:       snap.Clock.IsRunning,
			ChangedAt:       now.UTC(),
		}
	case session.NoticeScoreChanged:
		eventType = EventScoreChanged
		payload = ScoreChangedPayload{
			Side:       string(n.Side),
			HomeName:   snap.Home.Name,
			HomeScore:  snap.Home.Score,
			GuestName:  snap.Guest.Name,
			GuestScore: snap.Guest.Score,
			Phase:      string(snap.Clock.Phase),
			ChangedAt:  now.UTC(),
		}
	case session.NoticeMatchConcluded:
		if n.Stat == nil {
			return Event{}, false, nil
		}
		eventType = EventMatchConcluded
		payload = MatchConcludedPayload{
			MatchID:    n.Stat.ID,
			HomeName:   n.Stat.HomeConfig.Name,
			HomeScore:  n.Stat.HomeConfig.Score,
			GuestName:  n.Stat.GuestConfig.Name,
			GuestScore: n.Stat.GuestConfig.Score,
			FinalPhase: string(n.Stat.FinalPhase),
			RecordedAt: time.UnixMilli(n.Stat.Timestamp).UTC(),
		}
	case session.NoticeActivated:
		eventType = EventActivated
		p := ActivatedPayload{ActivatedAt: now.UTC()}
		if ms := snap.Entitlement.LicenseExpiresAt; ms != nil {
			expires := time.UnixMilli(*ms).UTC()
			p.LicenseExpiresAt = &expires
		}
		payload = p
	default:
		return Event{}, false, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, false, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:        uuid.New(),
		DeviceID:  snap.DeviceID,
		EventType: eventType,
		Payload:   data,
		CreatedAt: now,
	}, true, nil
}
