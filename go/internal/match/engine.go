package match

// State is the observable clock state.
type State struct {
	Phase           Phase `json:"phase"`
	TimeLeftSeconds int   `json:"time_left_seconds"`
	IsRunning       bool  `json:"is_running"`
}

// Outcome describes what a single engine operation changed.
type Outcome struct {
	// Sound is set when the countdown crossed from 1 to 0.
	Sound        bool
	PhaseChanged bool
	From         Phase
	To           Phase
}

// Engine is the match clock state machine. It is not safe for concurrent use;
// the owner serialises calls.
type Engine struct {
	state    State
	settings Settings
}

// NewEngine returns an engine waiting in PRE_GAME with a full quarter on the clock.
func NewEngine(settings Settings) *Engine {
	return &Engine{
		state: State{
			Phase:           PhasePreGame,
			TimeLeftSeconds: settings.QuarterSeconds(),
		},
		settings: settings,
	}
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// SetSettings replaces the phase lengths. The active countdown is left alone;
// only phases that begin afterwards use the new values.
func (e *Engine) SetSettings(s Settings) {
	e.settings = s
}

// Start begins a fresh match from PRE_GAME with the start delay countdown.
// Anywhere else it behaves like Toggle.
func (e *Engine) Start() Outcome {
	if e.state.Phase == PhasePreGame && !e.state.IsRunning {
		from := e.state.Phase
		e.state = State{
			Phase:           PhaseStartDelay,
			TimeLeftSeconds: StartDelaySeconds,
			IsRunning:       true,
		}
		return Outcome{PhaseChanged: true, From: from, To: PhaseStartDelay}
	}
	e.state.IsRunning = !e.state.IsRunning
	return Outcome{From: e.state.Phase, To: e.state.Phase}
}

// Toggle is the operator's play/pause control.
func (e *Engine) Toggle() Outcome {
	return e.Start()
}

// Tick advances the clock by one second. It is a no-op unless the clock is
// running with time left.
func (e *Engine) Tick() Outcome {
	if !e.state.IsRunning || e.state.TimeLeftSeconds <= 0 {
		return Outcome{From: e.state.Phase, To: e.state.Phase}
	}
	if e.state.TimeLeftSeconds > 1 {
		e.state.TimeLeftSeconds--
		return Outcome{From: e.state.Phase, To: e.state.Phase}
	}

	from := e.state.Phase
	var (
		next     Phase
		duration int
	)
	if from == PhaseStartDelay {
		next, duration = PhaseQ1, e.settings.QuarterSeconds()
	} else {
		next, duration = Next(from, e.settings)
	}

	e.state.Phase = next
	e.state.TimeLeftSeconds = duration
	if next == PhaseEndGame {
		e.state.IsRunning = false
	}
	return Outcome{Sound: true, PhaseChanged: true, From: from, To: next}
}

// Skip jumps straight to the next phase and pauses.
func (e *Engine) Skip() Outcome {
	from := e.state.Phase
	next, duration := Next(from, e.settings)
	e.state = State{Phase: next, TimeLeftSeconds: duration}
	return Outcome{PhaseChanged: true, From: from, To: next}
}

// Reset returns to PRE_GAME with a full quarter and the clock stopped.
// Scores are not touched.
func (e *Engine) Reset() Outcome {
	from := e.state.Phase
	e.state = State{
		Phase:           PhasePreGame,
		TimeLeftSeconds: e.settings.QuarterSeconds(),
	}
	return Outcome{PhaseChanged: from != PhasePreGame, From: from, To: PhasePreGame}
}
