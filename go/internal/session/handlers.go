package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtclock/go/internal/match"
	"github.com/mcdev12/courtclock/go/internal/models"
	"github.com/mcdev12/courtclock/go/internal/score"
	"github.com/mcdev12/courtclock/go/internal/storage"
)

// handle applies one message. It runs on the session goroutine only.
func (s *Session) handle(msg Msg) Result {
	if gated(msg) && s.gate.Status().MustActivate {
		return Result{Snapshot: s.snapshot(), Err: ErrActivationRequired}
	}

	switch m := msg.(type) {
	case Toggle:
		s.clockCommand(s.engine.Toggle())
	case Skip:
		s.clockCommand(s.engine.Skip())
	case Reset:
		out := s.engine.Reset()
		s.ledger.Reset()
		s.saveTeam(score.SideHome)
		s.saveTeam(score.SideGuest)
		s.clockCommand(out)
	case AdjustScore:
		return s.adjustScore(m)
	case UpdateSettings:
		return s.updateSettings(m.Settings)
	case UpdateTeam:
		return s.updateTeam(m)
	case SetMuted:
		s.muted = m.Muted
		s.notify(Notice{Type: NoticeState, Snapshot: s.snapshot()})
	case RecordMatch:
		stat := s.recordMatch()
		return Result{Snapshot: s.snapshot(), Value: stat}
	case DeleteMatch:
		return s.deleteMatch(m.ID)
	case ClearHistory:
		s.history = []models.GameStat{}
		s.persist.enqueue(storage.KeyGameHistory, s.history)
		log.Info().Msg("match history cleared")
	case SaveProfile:
		return s.saveProfile(m.Name)
	case DeleteProfile:
		return s.deleteProfile(m.ID)
	case LoadProfile:
		return s.loadProfile(m.ID)
	case Activate:
		return s.activate(m.Key)
	case GetState:
	case ListHistory:
		return Result{Snapshot: s.snapshot(), Value: slices.Clone(s.history)}
	case ListProfiles:
		return Result{Snapshot: s.snapshot(), Value: slices.Clone(s.profiles)}
	case EntitlementStatus:
		return Result{Snapshot: s.snapshot(), Value: s.gate.Status()}
	default:
		return Result{Snapshot: s.snapshot(), Err: fmt.Errorf("unsupported message %T", msg)}
	}
	return Result{Snapshot: s.snapshot()}
}

func (s *Session) clockCommand(out match.Outcome) {
	if out.PhaseChanged {
		s.phaseChanged(out)
	}
	st := s.engine.State()
	log.Debug().
		Str("phase", string(st.Phase)).
		Int("time_left", st.TimeLeftSeconds).
		Bool("running", st.IsRunning).
		Msg("clock command applied")
	s.notify(Notice{Type: NoticeState, Snapshot: s.snapshot()})
}

func (s *Session) adjustScore(m AdjustScore) Result {
	if _, err := s.ledger.Adjust(m.Side, m.Delta); err != nil {
		return Result{Snapshot: s.snapshot(), Err: err}
	}
	s.saveTeam(m.Side)
	snap := s.snapshot()
	s.notify(Notice{Type: NoticeScoreChanged, Snapshot: snap, Side: m.Side})
	return Result{Snapshot: snap}
}

// updateSettings stores the new record. The running countdown keeps its
// remaining time; phases entered afterwards use the new lengths.
func (s *Session) updateSettings(next models.GameSettings) Result {
	if next.QuarterLength < 0 || next.BreakLength < 0 || next.HalftimeLength < 0 {
		return Result{Snapshot: s.snapshot(), Err: fmt.Errorf("%w: durations must not be negative", ErrInvalidSettings)}
	}
	if next.SoundType == "" {
		next.SoundType = models.SoundWhistleNetball
	}
	if !next.SoundType.Valid() {
		return Result{Snapshot: s.snapshot(), Err: fmt.Errorf("%w: unknown sound type %q", ErrInvalidSettings, next.SoundType)}
	}
	if next.FavoriteGroups == nil {
		next.FavoriteGroups = []string{}
	}
	s.applySettings(next)
	snap := s.snapshot()
	s.notify(Notice{Type: NoticeState, Snapshot: snap})
	return Result{Snapshot: snap}
}

func (s *Session) applySettings(next models.GameSettings) {
	s.settings = next
	s.engine.SetSettings(next.Clock())
	s.persist.enqueue(storage.KeySettings, s.settings)
}

func (s *Session) updateTeam(m UpdateTeam) Result {
	switch m.Side {
	case score.SideHome:
		s.home = m.Update.Apply(s.home)
	case score.SideGuest:
		s.guest = m.Update.Apply(s.guest)
	default:
		return Result{Snapshot: s.snapshot(), Err: score.ErrUnknownSide}
	}
	s.saveTeam(m.Side)
	snap := s.snapshot()
	s.notify(Notice{Type: NoticeState, Snapshot: snap})
	return Result{Snapshot: snap}
}

// recordMatch appends the current teams and phase to the history.
func (s *Session) recordMatch() models.GameStat {
	stat := models.GameStat{
		ID:          s.newID(),
		Timestamp:   s.clock.Now().UnixMilli(),
		HomeConfig:  s.team(score.SideHome),
		GuestConfig: s.team(score.SideGuest),
		FinalPhase:  s.engine.State().Phase,
	}
	s.history = append(s.history, stat)
	s.persist.enqueue(storage.KeyGameHistory, s.history)
	log.Info().
		Str("match_id", stat.ID).
		Str("phase", string(stat.FinalPhase)).
		Int("home", stat.HomeConfig.Score).
		Int("guest", stat.GuestConfig.Score).
		Msg("match recorded")
	return stat
}

func (s *Session) deleteMatch(id string) Result {
	i := slices.IndexFunc(s.history, func(g models.GameStat) bool { return g.ID == id })
	if i < 0 {
		return Result{Snapshot: s.snapshot(), Err: ErrMatchNotFound}
	}
	s.history = slices.Delete(s.history, i, i+1)
	s.persist.enqueue(storage.KeyGameHistory, s.history)
	return Result{Snapshot: s.snapshot()}
}

func (s *Session) saveProfile(name string) Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{Snapshot: s.snapshot(), Err: ErrEmptyProfileName}
	}
	p := models.SettingsProfile{
		ID:          s.newID(),
		ProfileName: name,
		CreatedAt:   s.clock.Now().UnixMilli(),
		Settings:    s.settings,
		HomeTeam:    s.team(score.SideHome),
		GuestTeam:   s.team(score.SideGuest),
	}
	s.profiles = append(s.profiles, p)
	s.persist.enqueue(storage.KeyProfiles, s.profiles)
	log.Info().Str("profile_id", p.ID).Str("profile_name", name).Msg("profile saved")
	return Result{Snapshot: s.snapshot(), Value: p}
}

func (s *Session) deleteProfile(id string) Result {
	i := slices.IndexFunc(s.profiles, func(p models.SettingsProfile) bool { return p.ID == id })
	if i < 0 {
		return Result{Snapshot: s.snapshot(), Err: ErrProfileNotFound}
	}
	s.profiles = slices.Delete(s.profiles, i, i+1)
	s.persist.enqueue(storage.KeyProfiles, s.profiles)
	return Result{Snapshot: s.snapshot()}
}

// loadProfile replaces settings and both team records. Live scores stay with
// the ledger.
func (s *Session) loadProfile(id string) Result {
	i := slices.IndexFunc(s.profiles, func(p models.SettingsProfile) bool { return p.ID == id })
	if i < 0 {
		return Result{Snapshot: s.snapshot(), Err: ErrProfileNotFound}
	}
	p := s.profiles[i]
	s.applySettings(p.Settings)
	s.home = p.HomeTeam
	s.guest = p.GuestTeam
	s.saveTeam(score.SideHome)
	s.saveTeam(score.SideGuest)
	log.Info().Str("profile_id", p.ID).Str("profile_name", p.ProfileName).Msg("profile loaded")

	snap := s.snapshot()
	s.notify(Notice{Type: NoticeState, Snapshot: snap})
	return Result{Snapshot: snap}
}

// activate checks the key. Value reports whether it was accepted.
func (s *Session) activate(key string) Result {
	if !s.gate.Accept(key) {
		log.Warn().Str("device_id", s.gate.State().DeviceID).Msg("activation key rejected")
		return Result{Snapshot: s.snapshot(), Value: false}
	}
	st := s.gate.State()
	s.persist.enqueue(storage.KeyActivated, st.IsActivated)
	if st.ActivationTimestamp != nil {
		s.persist.enqueue(storage.KeyActivationDate, *st.ActivationTimestamp)
	}
	log.Info().Str("device_id", st.DeviceID).Msg("device activated")

	snap := s.snapshot()
	s.notify(Notice{Type: NoticeActivated, Snapshot: snap})
	return Result{Snapshot: snap, Value: true}
}
