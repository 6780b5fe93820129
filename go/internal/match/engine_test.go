package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engineAt(phase Phase, timeLeft int, running bool, s Settings) *Engine {
	e := NewEngine(s)
	e.state = State{Phase: phase, TimeLeftSeconds: timeLeft, IsRunning: running}
	return e
}

func TestNewEngine_StartsInPreGame(t *testing.T) {
	e := NewEngine(Settings{QuarterMinutes: 12, BreakMinutes: 3, HalftimeMinutes: 10})

	assert.Equal(t, State{Phase: PhasePreGame, TimeLeftSeconds: 720}, e.State())
}

func TestStart_FromPreGameEntersStartDelay(t *testing.T) {
	e := NewEngine(DefaultSettings())

	out := e.Start()

	assert.True(t, out.PhaseChanged)
	assert.False(t, out.Sound)
	assert.Equal(t, State{Phase: PhaseStartDelay, TimeLeftSeconds: StartDelaySeconds, IsRunning: true}, e.State())
}

func TestStart_ElsewhereFlipsRunning(t *testing.T) {
	e := engineAt(PhaseQ2, 300, true, DefaultSettings())

	e.Start()
	assert.Equal(t, State{Phase: PhaseQ2, TimeLeftSeconds: 300, IsRunning: false}, e.State())

	e.Toggle()
	assert.Equal(t, State{Phase: PhaseQ2, TimeLeftSeconds: 300, IsRunning: true}, e.State())
}

func TestTick_NoOpWhenStoppedOrEmpty(t *testing.T) {
	cases := []struct {
		name  string
		setup State
	}{
		{name: "paused", setup: State{Phase: PhaseQ1, TimeLeftSeconds: 100}},
		{name: "running with nothing left", setup: State{Phase: PhaseEndGame, TimeLeftSeconds: 0, IsRunning: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := engineAt(tc.setup.Phase, tc.setup.TimeLeftSeconds, tc.setup.IsRunning, DefaultSettings())
			out := e.Tick()
			assert.False(t, out.Sound)
			assert.False(t, out.PhaseChanged)
			assert.Equal(t, tc.setup, e.State())
		})
	}
}

func TestTick_DecrementsMonotonically(t *testing.T) {
	e := engineAt(PhaseQ3, 50, true, DefaultSettings())

	prev := e.State().TimeLeftSeconds
	for i := 0; i < 49; i++ {
		out := e.Tick()
		require.False(t, out.PhaseChanged)
		cur := e.State().TimeLeftSeconds
		require.Equal(t, prev-1, cur)
		require.GreaterOrEqual(t, cur, 0)
		prev = cur
	}
	assert.Equal(t, 1, e.State().TimeLeftSeconds)
}

func TestTick_QuarterRollsIntoBreak(t *testing.T) {
	s := Settings{QuarterMinutes: 15, BreakMinutes: 3, HalftimeMinutes: 5}
	e := engineAt(PhaseQ1, s.QuarterSeconds(), true, s)

	sounds := 0
	for i := 0; i < 900; i++ {
		if e.Tick().Sound {
			sounds++
		}
	}

	assert.Equal(t, 1, sounds)
	assert.Equal(t, State{Phase: PhaseQ1Break, TimeLeftSeconds: 180, IsRunning: true}, e.State())
}

func TestTick_StartDelayAlwaysResolvesToQ1(t *testing.T) {
	for _, s := range []Settings{
		DefaultSettings(),
		{QuarterMinutes: 1, BreakMinutes: 1, HalftimeMinutes: 1},
		{QuarterMinutes: 20, BreakMinutes: 0, HalftimeMinutes: -4},
	} {
		e := NewEngine(s)
		e.Start()

		for i := 0; i < StartDelaySeconds-1; i++ {
			e.Tick()
			require.Equal(t, PhaseStartDelay, e.State().Phase)
		}
		out := e.Tick()

		assert.True(t, out.Sound)
		assert.Equal(t, State{Phase: PhaseQ1, TimeLeftSeconds: s.QuarterSeconds(), IsRunning: true}, e.State())
	}
}

func TestTick_FullMatchFollowsTable(t *testing.T) {
	s := Settings{QuarterMinutes: 1, BreakMinutes: 1, HalftimeMinutes: 2}
	e := NewEngine(s)
	e.Start()

	var seen []Phase
	for i := 0; i < 10_000 && e.State().IsRunning; i++ {
		out := e.Tick()
		if out.PhaseChanged {
			seen = append(seen, out.To)
		}
	}

	assert.Equal(t, []Phase{
		PhaseQ1, PhaseQ1Break, PhaseQ2, PhaseHalftime,
		PhaseQ3, PhaseQ3Break, PhaseQ4, PhaseEndGame,
	}, seen)
	assert.Equal(t, State{Phase: PhaseEndGame, TimeLeftSeconds: 0, IsRunning: false}, e.State())

	out := e.Tick()
	assert.False(t, out.Sound)
	assert.Equal(t, PhaseEndGame, e.State().Phase)
}

func TestSkip_AppliesTableAndPauses(t *testing.T) {
	s := Settings{QuarterMinutes: 10, BreakMinutes: 2, HalftimeMinutes: 8}
	cases := []struct {
		from     Phase
		wantNext Phase
		wantTime int
	}{
		{PhasePreGame, PhaseQ1, 600},
		{PhaseStartDelay, PhaseQ1, 600},
		{PhaseQ1, PhaseQ1Break, 120},
		{PhaseQ1Break, PhaseQ2, 600},
		{PhaseQ2, PhaseHalftime, 480},
		{PhaseHalftime, PhaseQ3, 600},
		{PhaseQ3, PhaseQ3Break, 120},
		{PhaseQ3Break, PhaseQ4, 600},
		{PhaseQ4, PhaseEndGame, 0},
		{PhaseEndGame, PhasePreGame, 600},
	}

	for _, tc := range cases {
		t.Run(string(tc.from), func(t *testing.T) {
			e := engineAt(tc.from, 42, true, s)
			out := e.Skip()
			assert.False(t, out.Sound)
			assert.True(t, out.PhaseChanged)
			assert.Equal(t, State{Phase: tc.wantNext, TimeLeftSeconds: tc.wantTime}, e.State())
		})
	}
}

func TestReset_ReturnsToPreGame(t *testing.T) {
	e := engineAt(PhaseQ3, 17, true, Settings{QuarterMinutes: 8})

	e.Reset()

	assert.Equal(t, State{Phase: PhasePreGame, TimeLeftSeconds: 480}, e.State())
}

func TestSetSettings_AppliesToNextPhaseOnly(t *testing.T) {
	e := engineAt(PhaseQ1, 2, true, Settings{QuarterMinutes: 15, BreakMinutes: 2})

	e.SetSettings(Settings{QuarterMinutes: 5, BreakMinutes: 4})
	assert.Equal(t, 2, e.State().TimeLeftSeconds)

	e.Tick()
	e.Tick()
	assert.Equal(t, State{Phase: PhaseQ1Break, TimeLeftSeconds: 240, IsRunning: true}, e.State())
}

func TestPhaseLabels(t *testing.T) {
	labels := map[Phase]string{
		PhasePreGame:    "0",
		PhaseStartDelay: "SD",
		PhaseQ1:         "1",
		PhaseQ1Break:    "B1",
		PhaseQ2:         "2",
		PhaseHalftime:   "HT",
		PhaseQ3:         "3",
		PhaseQ3Break:    "B3",
		PhaseQ4:         "4",
		PhaseEndGame:    "FINAL SCORE",
	}
	for p, want := range labels {
		assert.Equal(t, want, p.Label(), p)
	}
	assert.True(t, PhaseHalftime.IsBreak())
	assert.False(t, PhaseQ2.IsBreak())
	assert.Equal(t, "0", Phase("OVERTIME").Label())
}

func TestSettings_NonPositiveFallsBackToDefaults(t *testing.T) {
	s := Settings{QuarterMinutes: 0, BreakMinutes: -3, HalftimeMinutes: 7}
	assert.Equal(t, DefaultQuarterMinutes*60, s.QuarterSeconds())
	assert.Equal(t, DefaultBreakMinutes*60, s.BreakSeconds())
	assert.Equal(t, 7*60, s.HalftimeSeconds())
}
