package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtclock/go/internal/entitlement"
	"github.com/mcdev12/courtclock/go/internal/match"
	"github.com/mcdev12/courtclock/go/internal/models"
	"github.com/mcdev12/courtclock/go/internal/score"
	"github.com/mcdev12/courtclock/go/internal/storage"
)

var (
	ErrClosed             = errors.New("session closed")
	ErrActivationRequired = errors.New("activation required")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrMatchNotFound      = errors.New("match record not found")
	ErrEmptyProfileName   = errors.New("profile name is required")
	ErrInvalidSettings    = errors.New("invalid settings")
)

// DefaultTickInterval is one clock second.
const DefaultTickInterval = time.Second

const inboxSize = 64

// Config wires a session to its collaborators.
type Config struct {
	Store        storage.Store
	Clock        clockwork.Clock
	TickInterval time.Duration
	Observers    []Observer

	// Defaults used when nothing is stored yet.
	DefaultSettings  models.GameSettings
	DefaultHomeTeam  models.TeamConfig
	DefaultGuestTeam models.TeamConfig

	// NewDeviceID and NewID are overridable for tests.
	NewDeviceID func() string
	NewID       func() string
}

// Session owns one scoreboard: clock, scores, team records, history, profiles
// and the entitlement gate. All mutation happens on the goroutine running Run.
type Session struct {
	inbox        chan envelope
	done         chan struct{}
	clock        clockwork.Clock
	tickInterval time.Duration
	observers    []Observer
	persist      *persister
	newID        func() string

	engine       *match.Engine
	ledger       score.Ledger
	home         models.TeamConfig
	guest        models.TeamConfig
	settings     models.GameSettings
	history      []models.GameStat
	profiles     []models.SettingsProfile
	gate         *entitlement.Gate
	muted        bool
	autoRecorded bool
	timer        clockwork.Timer
}

// New loads persisted state and prepares a session. Call Run to start it.
func New(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.DefaultSettings.QuarterLength == 0 {
		cfg.DefaultSettings = models.DefaultGameSettings()
	}
	if cfg.DefaultHomeTeam.Name == "" {
		cfg.DefaultHomeTeam = models.DefaultHomeTeam()
	}
	if cfg.DefaultGuestTeam.Name == "" {
		cfg.DefaultGuestTeam = models.DefaultGuestTeam()
	}
	if cfg.NewDeviceID == nil {
		cfg.NewDeviceID = entitlement.NewDeviceID
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	s := &Session{
		inbox:        make(chan envelope, inboxSize),
		done:         make(chan struct{}),
		clock:        cfg.Clock,
		tickInterval: cfg.TickInterval,
		observers:    cfg.Observers,
		persist:      newPersister(cfg.Store),
		newID:        cfg.NewID,
	}

	store := cfg.Store
	s.settings = storage.Load(ctx, store, storage.KeySettings, cfg.DefaultSettings)
	s.home = storage.Load(ctx, store, storage.KeyHomeTeam, cfg.DefaultHomeTeam)
	s.guest = storage.Load(ctx, store, storage.KeyGuestTeam, cfg.DefaultGuestTeam)
	s.profiles = storage.Load(ctx, store, storage.KeyProfiles, []models.SettingsProfile{})
	s.history = storage.Load(ctx, store, storage.KeyGameHistory, []models.GameStat{})
	s.ledger = score.Ledger{Home: max(0, s.home.Score), Guest: max(0, s.guest.Score)}
	s.engine = match.NewEngine(s.settings.Clock())

	if err := s.loadEntitlement(ctx, store, cfg.NewDeviceID); err != nil {
		return nil, err
	}

	log.Info().
		Str("device_id", s.gate.State().DeviceID).
		Int("history", len(s.history)).
		Int("profiles", len(s.profiles)).
		Bool("must_activate", s.gate.Status().MustActivate).
		Msg("session loaded")
	return s, nil
}

// loadEntitlement reads the gate fields and writes the first-run values
// synchronously so they exist before anything else can happen.
func (s *Session) loadEntitlement(ctx context.Context, store storage.Store, newDeviceID func() string) error {
	state := entitlement.State{
		DeviceID:         storage.Load(ctx, store, storage.KeyDeviceID, ""),
		InstallTimestamp: storage.Load(ctx, store, storage.KeyFirstLaunch, int64(0)),
		IsActivated:      storage.Load(ctx, store, storage.KeyActivated, false),
	}
	if ts := storage.Load(ctx, store, storage.KeyActivationDate, int64(0)); ts > 0 {
		state.ActivationTimestamp = &ts
	}

	state, changed := entitlement.Ensure(state, s.clock.Now().UnixMilli(), newDeviceID)
	if changed {
		if err := storage.Save(ctx, store, storage.KeyDeviceID, state.DeviceID); err != nil {
			return fmt.Errorf("persist device id: %w", err)
		}
		if err := storage.Save(ctx, store, storage.KeyFirstLaunch, state.InstallTimestamp); err != nil {
			return fmt.Errorf("persist install date: %w", err)
		}
	}
	s.gate = entitlement.NewGate(state, s.clock)
	return nil
}

// Run processes commands and clock ticks until ctx is cancelled. Pending
// saves are flushed before it returns.
func (s *Session) Run(ctx context.Context) error {
	persistCtx, cancelPersist := context.WithCancel(context.Background())
	go s.persist.run(persistCtx)
	defer func() {
		cancelPersist()
		<-s.persist.done
	}()
	defer close(s.done)

	log.Info().Dur("tick_interval", s.tickInterval).Msg("session started")

	for {
		var tickCh <-chan time.Time
		if s.timer != nil {
			tickCh = s.timer.Chan()
		}

		select {
		case <-ctx.Done():
			s.stopTimer()
			log.Info().Msg("session shutting down")
			return nil

		case env := <-s.inbox:
			before := s.engine.State()
			beforeSettings := s.engine.Settings()
			reply := s.handle(env.msg)
			if s.engine.State() != before || s.engine.Settings() != beforeSettings {
				s.rearm()
			}
			env.reply <- reply

		case <-tickCh:
			s.timer = nil
			s.onTick()
			s.rearm()
		}
	}
}

func (s *Session) onTick() {
	out := s.engine.Tick()
	snap := s.snapshot()
	if out.Sound {
		trigger := &SoundTrigger{
			SoundType: s.settings.SoundType,
			Muted:     s.muted,
			Phase:     out.To,
			FiredAt:   s.clock.Now(),
		}
		s.notify(Notice{Type: NoticeSound, Snapshot: snap, Sound: trigger})
	}
	if out.PhaseChanged {
		s.phaseChanged(out)
		snap = s.snapshot()
	}
	s.notify(Notice{Type: NoticeTick, Snapshot: snap})
}

// phaseChanged logs the transition, tells observers and runs the
// once-per-match auto record.
func (s *Session) phaseChanged(out match.Outcome) {
	log.Info().
		Str("from", string(out.From)).
		Str("to", string(out.To)).
		Int("time_left", s.engine.State().TimeLeftSeconds).
		Msg("phase changed")
	s.notify(Notice{Type: NoticePhaseChanged, Snapshot: s.snapshot(), From: out.From, To: out.To})

	switch out.To {
	case match.PhaseEndGame:
		if !s.autoRecorded {
			s.autoRecorded = true
			stat := s.recordMatch()
			s.notify(Notice{Type: NoticeMatchConcluded, Snapshot: s.snapshot(), Stat: &stat})
		}
	case match.PhasePreGame, match.PhaseStartDelay:
		s.autoRecorded = false
	}
}

func (s *Session) notify(n Notice) {
	for _, o := range s.observers {
		o.Notify(n)
	}
}

func (s *Session) snapshot() Snapshot {
	st := s.engine.State()
	return Snapshot{
		Clock:       st,
		PhaseLabel:  st.Phase.Label(),
		IsBreak:     st.Phase.IsBreak(),
		Home:        s.team(score.SideHome),
		Guest:       s.team(score.SideGuest),
		Settings:    s.settings,
		Muted:       s.muted,
		DeviceID:    s.gate.State().DeviceID,
		Entitlement: s.gate.Status(),
	}
}

// team returns the team record with the ledger's score mirrored in.
func (s *Session) team(side score.Side) models.TeamConfig {
	t := s.home
	if side == score.SideGuest {
		t = s.guest
	}
	t.Score = s.ledger.Get(side)
	return t
}

func (s *Session) saveTeam(side score.Side) {
	if side == score.SideGuest {
		s.persist.enqueue(storage.KeyGuestTeam, s.team(score.SideGuest))
		return
	}
	s.persist.enqueue(storage.KeyHomeTeam, s.team(score.SideHome))
}
