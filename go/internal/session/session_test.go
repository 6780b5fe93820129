package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/courtclock/go/internal/match"
	"github.com/mcdev12/courtclock/go/internal/models"
	"github.com/mcdev12/courtclock/go/internal/score"
	"github.com/mcdev12/courtclock/go/internal/storage"
)

const (
	testDeviceID = "A1B2C3D4"
	testKey      = "3276413945013288"
)

var installTime = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

type recorder struct {
	ch chan Notice
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Notice, 4096)}
}

func (r *recorder) Notify(n Notice) {
	select {
	case r.ch <- n:
	default:
	}
}

// until collects notices up to and including the first one of type want.
func (r *recorder) until(t *testing.T, want NoticeType) []Notice {
	t.Helper()
	var seen []Notice
	timeout := time.After(2 * time.Second)
	for {
		select {
		case n := <-r.ch:
			seen = append(seen, n)
			if n.Type == want {
				return seen
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s notice", want)
			return nil
		}
	}
}

func (r *recorder) drain() {
	for {
		select {
		case <-r.ch:
		default:
			return
		}
	}
}

type harness struct {
	session *Session
	clock   *clockwork.FakeClock
	store   *storage.MemoryStore
	rec     *recorder
	stop    func()
}

func newHarness(t *testing.T, store *storage.MemoryStore) *harness {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStore()
	}
	clock := clockwork.NewFakeClockAt(installTime)
	rec := newRecorder()
	ids := 0

	s, err := New(context.Background(), Config{
		Store:        store,
		Clock:        clock,
		TickInterval: time.Second,
		Observers:    []Observer{rec},
		NewDeviceID:  func() string { return testDeviceID },
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var stopped bool
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		require.NoError(t, <-done)
	}
	t.Cleanup(stop)

	return &harness{session: s, clock: clock, store: store, rec: rec, stop: stop}
}

// tick waits for the pending timer, fires it and returns the notices the
// tick produced.
func (h *harness) tick(t *testing.T) []Notice {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(time.Second)
	return h.rec.until(t, NoticeTick)
}

func (h *harness) ticks(t *testing.T, n int) []Notice {
	t.Helper()
	var all []Notice
	for range n {
		all = append(all, h.tick(t)...)
	}
	return all
}

func countType(notices []Notice, typ NoticeType) int {
	n := 0
	for _, x := range notices {
		if x.Type == typ {
			n++
		}
	}
	return n
}

func quickSettings() models.GameSettings {
	s := models.DefaultGameSettings()
	s.QuarterLength = 1
	s.BreakLength = 1
	s.HalftimeLength = 1
	return s
}

func TestNew_FirstRunPersistsIdentity(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	_, err := New(ctx, Config{
		Store:       store,
		Clock:       clockwork.NewFakeClockAt(installTime),
		NewDeviceID: func() string { return testDeviceID },
	})
	require.NoError(t, err)

	raw, err := store.Get(ctx, storage.KeyDeviceID)
	require.NoError(t, err)
	assert.Equal(t, `"A1B2C3D4"`, raw)

	raw, err = store.Get(ctx, storage.KeyFirstLaunch)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(installTime.UnixMilli()), raw)
}

func TestNew_RestoresStoredRecords(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, storage.KeySettings, `{"quarter_length": 10, "bogus": 1}`))
	require.NoError(t, store.Set(ctx, storage.KeyHomeTeam, `{"name": "Hawks", "score": 5}`))
	require.NoError(t, store.Set(ctx, storage.KeyGameHistory, `"corrupt"`))

	h := newHarness(t, store)
	snap, err := h.session.State(ctx)
	require.NoError(t, err)

	assert.Equal(t, match.PhasePreGame, snap.Clock.Phase)
	assert.Equal(t, 600, snap.Clock.TimeLeftSeconds)
	assert.Equal(t, 2, snap.Settings.BreakLength)
	assert.Equal(t, "Hawks", snap.Home.Name)
	assert.Equal(t, "#ef4444", snap.Home.Color)
	assert.Equal(t, 5, snap.Home.Score)
	assert.Equal(t, "GUEST", snap.Guest.Name)

	history, err := h.session.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestToggle_StartDelayResolvesToQ1(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	snap, err := h.session.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, match.State{Phase: match.PhaseStartDelay, TimeLeftSeconds: 10, IsRunning: true}, snap.Clock)
	h.rec.drain()

	notices := h.ticks(t, 9)
	assert.Zero(t, countType(notices, NoticeSound))
	last := notices[len(notices)-1]
	assert.Equal(t, 1, last.Snapshot.Clock.TimeLeftSeconds)

	notices = h.tick(t)
	assert.Equal(t, 1, countType(notices, NoticeSound))
	assert.Equal(t, 1, countType(notices, NoticePhaseChanged))
	for _, n := range notices {
		if n.Type == NoticeSound {
			require.NotNil(t, n.Sound)
			assert.Equal(t, models.SoundWhistleNetball, n.Sound.SoundType)
			assert.Equal(t, match.PhaseQ1, n.Sound.Phase)
		}
	}
	last = notices[len(notices)-1]
	assert.Equal(t, match.State{Phase: match.PhaseQ1, TimeLeftSeconds: 900, IsRunning: true}, last.Snapshot.Clock)
	assert.Equal(t, "1", last.Snapshot.PhaseLabel)
}

func TestToggle_PauseCancelsPendingTick(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.session.Toggle(ctx)
	require.NoError(t, err)
	h.tick(t)

	snap, err := h.session.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Clock.IsRunning)
	assert.Equal(t, 9, snap.Clock.TimeLeftSeconds)

	h.clock.Advance(5 * time.Second)
	snap, err = h.session.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, snap.Clock.TimeLeftSeconds)

	// Resuming continues from the paused value.
	_, err = h.session.Toggle(ctx)
	require.NoError(t, err)
	notices := h.tick(t)
	assert.Equal(t, 8, notices[len(notices)-1].Snapshot.Clock.TimeLeftSeconds)
}

func TestSkip_PausesWithoutSound(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.session.Toggle(ctx)
	require.NoError(t, err)
	h.rec.drain()

	snap, err := h.session.Skip(ctx)
	require.NoError(t, err)
	assert.Equal(t, match.State{Phase: match.PhaseQ1, TimeLeftSeconds: 900}, snap.Clock)

	notices := h.rec.until(t, NoticeState)
	assert.Zero(t, countType(notices, NoticeSound))

	h.clock.Advance(3 * time.Second)
	snap, err = h.session.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 900, snap.Clock.TimeLeftSeconds)
}

func TestTick_FinalWhistleRecordsMatchOnce(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.session.UpdateSettings(ctx, quickSettings())
	require.NoError(t, err)
	for range 7 {
		_, err = h.session.Skip(ctx)
		require.NoError(t, err)
	}
	snap, err := h.session.State(ctx)
	require.NoError(t, err)
	require.Equal(t, match.PhaseQ4, snap.Clock.Phase)
	require.Equal(t, 60, snap.Clock.TimeLeftSeconds)

	_, err = h.session.AdjustScore(ctx, score.SideHome, 1)
	require.NoError(t, err)
	_, err = h.session.Toggle(ctx)
	require.NoError(t, err)
	h.rec.drain()

	notices := h.ticks(t, 60)
	assert.Equal(t, 1, countType(notices, NoticeSound))
	assert.Equal(t, 1, countType(notices, NoticeMatchConcluded))

	snap, err = h.session.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, match.State{Phase: match.PhaseEndGame, TimeLeftSeconds: 0}, snap.Clock)
	assert.Equal(t, "FINAL SCORE", snap.PhaseLabel)

	history, err := h.session.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, match.PhaseEndGame, history[0].FinalPhase)
	assert.Equal(t, 1, history[0].HomeConfig.Score)
	assert.Equal(t, installTime.Add(60*time.Second).UnixMilli(), history[0].Timestamp)

	// Toggling at END_GAME with no time left never schedules a tick and
	// never records again.
	_, err = h.session.Toggle(ctx)
	require.NoError(t, err)
	h.clock.Advance(10 * time.Second)
	history, err = h.session.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAutoRecord_RearmsAfterPreGame(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	skipTo := func(phase match.Phase) {
		for {
			snap, err := h.session.Skip(ctx)
			require.NoError(t, err)
			if snap.Clock.Phase == phase {
				return
			}
		}
	}

	skipTo(match.PhaseEndGame)
	skipTo(match.PhaseQ4)
	skipTo(match.PhaseEndGame)

	history, err := h.session.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestReset_ZeroesScoresAndClock(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.session.Toggle(ctx)
	require.NoError(t, err)
	_, err = h.session.AdjustScore(ctx, score.SideGuest, 1)
	require.NoError(t, err)

	snap, err := h.session.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, match.State{Phase: match.PhasePreGame, TimeLeftSeconds: 900}, snap.Clock)
	assert.Zero(t, snap.Guest.Score)
	assert.Zero(t, snap.Home.Score)

	h.clock.Advance(2 * time.Second)
	snap, err = h.session.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 900, snap.Clock.TimeLeftSeconds)
}

func TestAdjustScore_ClampsAndPersists(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	snap, err := h.session.AdjustScore(ctx, score.SideHome, -1)
	require.NoError(t, err)
	assert.Zero(t, snap.Home.Score)

	for range 3 {
		_, err = h.session.AdjustScore(ctx, score.SideHome, 1)
		require.NoError(t, err)
	}
	_, err = h.session.AdjustScore(ctx, score.Side("away"), 1)
	assert.ErrorIs(t, err, score.ErrUnknownSide)
	_, err = h.session.AdjustScore(ctx, score.SideHome, 2)
	assert.ErrorIs(t, err, score.ErrInvalidDelta)

	h.stop()

	home := storage.Load(ctx, h.store, storage.KeyHomeTeam, models.TeamConfig{})
	assert.Equal(t, 3, home.Score)
	assert.Equal(t, "HOME", home.Name)
}

func TestUpdateSettings_KeepsCurrentCountdown(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.session.Skip(ctx)
	require.NoError(t, err)

	next := models.DefaultGameSettings()
	next.QuarterLength = 10
	next.BreakLength = 3
	snap, err := h.session.UpdateSettings(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, 900, snap.Clock.TimeLeftSeconds)

	snap, err = h.session.Skip(ctx)
	require.NoError(t, err)
	assert.Equal(t, match.State{Phase: match.PhaseQ1Break, TimeLeftSeconds: 180}, snap.Clock)

	next.SoundType = "kazoo"
	_, err = h.session.UpdateSettings(ctx, next)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	next.SoundType = models.SoundBuzzer
	next.HalftimeLength = -1
	_, err = h.session.UpdateSettings(ctx, next)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestUpdateTeam_MergesFieldsAndKeepsScore(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.session.AdjustScore(ctx, score.SideGuest, 1)
	require.NoError(t, err)

	name := "Falcons"
	snap, err := h.session.UpdateTeam(ctx, score.SideGuest, models.TeamUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Falcons", snap.Guest.Name)
	assert.Equal(t, "#eab308", snap.Guest.Color)
	assert.Equal(t, 1, snap.Guest.Score)

	_, err = h.session.UpdateTeam(ctx, score.Side("away"), models.TeamUpdate{Name: &name})
	assert.ErrorIs(t, err, score.ErrUnknownSide)
}

func TestProfiles_SaveLoadDelete(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.session.SaveProfile(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyProfileName)

	name := "Tigers"
	_, err = h.session.UpdateTeam(ctx, score.SideHome, models.TeamUpdate{Name: &name})
	require.NoError(t, err)
	p, err := h.session.SaveProfile(ctx, "  Finals ")
	require.NoError(t, err)
	assert.Equal(t, "Finals", p.ProfileName)
	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, installTime.UnixMilli(), p.CreatedAt)

	changed := models.DefaultGameSettings()
	changed.QuarterLength = 12
	_, err = h.session.UpdateSettings(ctx, changed)
	require.NoError(t, err)
	other := "Lions"
	_, err = h.session.UpdateTeam(ctx, score.SideHome, models.TeamUpdate{Name: &other})
	require.NoError(t, err)

	snap, err := h.session.LoadProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, snap.Settings.QuarterLength)
	assert.Equal(t, "Tigers", snap.Home.Name)

	_, err = h.session.LoadProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.ErrorIs(t, h.session.DeleteProfile(ctx, "missing"), ErrProfileNotFound)

	require.NoError(t, h.session.DeleteProfile(ctx, p.ID))
	profiles, err := h.session.Profiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestHistory_RecordDeleteClear(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	first, err := h.session.RecordMatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, match.PhasePreGame, first.FinalPhase)
	_, err = h.session.RecordMatch(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, h.session.DeleteMatch(ctx, "missing"), ErrMatchNotFound)
	require.NoError(t, h.session.DeleteMatch(ctx, first.ID))

	history, err := h.session.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "id-2", history[0].ID)

	require.NoError(t, h.session.ClearHistory(ctx))
	h.stop()

	stored := storage.Load(ctx, h.store, storage.KeyGameHistory, []models.GameStat{{ID: "sentinel"}})
	assert.Empty(t, stored)
}

func TestGate_BlocksCommandsUntilActivated(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	status, err := h.session.Entitlement(ctx)
	require.NoError(t, err)
	assert.False(t, status.MustActivate)
	assert.Equal(t, 30, status.TrialMinutesRemaining)

	h.clock.Advance(31 * time.Minute)

	_, err = h.session.Toggle(ctx)
	assert.ErrorIs(t, err, ErrActivationRequired)
	_, err = h.session.AdjustScore(ctx, score.SideHome, 1)
	assert.ErrorIs(t, err, ErrActivationRequired)

	snap, err := h.session.State(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Entitlement.MustActivate)
	assert.Equal(t, testDeviceID, snap.DeviceID)

	ok, _, err := h.session.Activate(ctx, "0000000000000000")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, snap, err = h.session.Activate(ctx, " 3276 4139 4501 3288 ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, snap.Entitlement.MustActivate)

	_, err = h.session.Toggle(ctx)
	require.NoError(t, err)

	h.stop()
	assert.True(t, storage.Load(ctx, h.store, storage.KeyActivated, false))
	assert.Equal(t, h.clock.Now().UnixMilli(), storage.Load(ctx, h.store, storage.KeyActivationDate, int64(0)))
}

func TestGate_LicenseLapsesAfterWindow(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	ok, _, err := h.session.Activate(ctx, testKey)
	require.NoError(t, err)
	require.True(t, ok)

	h.clock.Advance(120*24*time.Hour + time.Millisecond)
	status, err := h.session.Entitlement(ctx)
	require.NoError(t, err)
	assert.True(t, status.LicenseExpired)
	assert.True(t, status.MustActivate)

	ok, snap, err := h.session.Activate(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, snap.Entitlement.MustActivate)
}

func TestSend_AfterShutdownReturnsErrClosed(t *testing.T) {
	h := newHarness(t, nil)
	h.stop()

	_, err := h.session.State(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSetMuted_StampsSoundTriggers(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	snap, err := h.session.SetMuted(ctx, true)
	require.NoError(t, err)
	assert.True(t, snap.Muted)

	_, err = h.session.Toggle(ctx)
	require.NoError(t, err)
	notices := h.ticks(t, 10)
	for _, n := range notices {
		if n.Type == NoticeSound {
			assert.True(t, n.Sound.Muted)
		}
	}
	assert.Equal(t, 1, countType(notices, NoticeSound))
}
