package session

import (
	"context"

	"github.com/mcdev12/courtclock/go/internal/entitlement"
	"github.com/mcdev12/courtclock/go/internal/models"
	"github.com/mcdev12/courtclock/go/internal/score"
)

// Send delivers msg to the session goroutine and waits for its reply.
func (s *Session) Send(ctx context.Context, msg Msg) Result {
	env := envelope{msg: msg, reply: make(chan Result, 1)}
	select {
	case s.inbox <- env:
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	case <-s.done:
		return Result{Err: ErrClosed}
	}
	select {
	case r := <-env.reply:
		return r
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	case <-s.done:
		return Result{Err: ErrClosed}
	}
}

func (s *Session) State(ctx context.Context) (Snapshot, error) {
	r := s.Send(ctx, GetState{})
	return r.Snapshot, r.Err
}

func (s *Session) Toggle(ctx context.Context) (Snapshot, error) {
	r := s.Send(ctx, Toggle{})
	return r.Snapshot, r.Err
}

func (s *Session) Skip(ctx context.Context) (Snapshot, error) {
	r := s.Send(ctx, Skip{})
	return r.Snapshot, r.Err
}

// Reset stops the clock, returns to PRE_GAME and zeroes both scores.
func (s *Session) Reset(ctx context.Context) (Snapshot, error) {
	r := s.Send(ctx, Reset{})
	return r.Snapshot, r.Err
}

func (s *Session) AdjustScore(ctx context.Context, side score.Side, delta int) (Snapshot, error) {
	r := s.Send(ctx, AdjustScore{Side: side, Delta: delta})
	return r.Snapshot, r.Err
}

func (s *Session) UpdateSettings(ctx context.Context, settings models.GameSettings) (Snapshot, error) {
	r := s.Send(ctx, UpdateSettings{Settings: settings})
	return r.Snapshot, r.Err
}

func (s *Session) UpdateTeam(ctx context.Context, side score.Side, u models.TeamUpdate) (Snapshot, error) {
	r := s.Send(ctx, UpdateTeam{Side: side, Update: u})
	return r.Snapshot, r.Err
}

func (s *Session) SetMuted(ctx context.Context, muted bool) (Snapshot, error) {
	r := s.Send(ctx, SetMuted{Muted: muted})
	return r.Snapshot, r.Err
}

func (s *Session) RecordMatch(ctx context.Context) (models.GameStat, error) {
	r := s.Send(ctx, RecordMatch{})
	if r.Err != nil {
		return models.GameStat{}, r.Err
	}
	return r.Value.(models.GameStat), nil
}

func (s *Session) DeleteMatch(ctx context.Context, id string) error {
	return s.Send(ctx, DeleteMatch{ID: id}).Err
}

func (s *Session) ClearHistory(ctx context.Context) error {
	return s.Send(ctx, ClearHistory{}).Err
}

func (s *Session) History(ctx context.Context) ([]models.GameStat, error) {
	r := s.Send(ctx, ListHistory{})
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Value.([]models.GameStat), nil
}

func (s *Session) SaveProfile(ctx context.Context, name string) (models.SettingsProfile, error) {
	r := s.Send(ctx, SaveProfile{Name: name})
	if r.Err != nil {
		return models.SettingsProfile{}, r.Err
	}
	return r.Value.(models.SettingsProfile), nil
}

func (s *Session) DeleteProfile(ctx context.Context, id string) error {
	return s.Send(ctx, DeleteProfile{ID: id}).Err
}

func (s *Session) LoadProfile(ctx context.Context, id string) (Snapshot, error) {
	r := s.Send(ctx, LoadProfile{ID: id})
	return r.Snapshot, r.Err
}

func (s *Session) Profiles(ctx context.Context) ([]models.SettingsProfile, error) {
	r := s.Send(ctx, ListProfiles{})
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Value.([]models.SettingsProfile), nil
}

// Activate submits an activation key. ok is false when the key does not match.
func (s *Session) Activate(ctx context.Context, key string) (ok bool, snap Snapshot, err error) {
	r := s.Send(ctx, Activate{Key: key})
	if r.Err != nil {
		return false, r.Snapshot, r.Err
	}
	return r.Value.(bool), r.Snapshot, nil
}

func (s *Session) Entitlement(ctx context.Context) (entitlement.Status, error) {
	r := s.Send(ctx, EntitlementStatus{})
	if r.Err != nil {
		return entitlement.Status{}, r.Err
	}
	return r.Value.(entitlement.Status), nil
}
