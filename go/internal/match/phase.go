package match

// Phase is one discrete segment of a match.
type Phase string

const (
	PhasePreGame    Phase = "PRE_GAME"
	PhaseStartDelay Phase = "START_DELAY"
	PhaseQ1         Phase = "Q1"
	PhaseQ1Break    Phase = "Q1_BREAK"
	PhaseQ2         Phase = "Q2"
	PhaseHalftime   Phase = "HALFTIME"
	PhaseQ3         Phase = "Q3"
	PhaseQ3Break    Phase = "Q3_BREAK"
	PhaseQ4         Phase = "Q4"
	PhaseEndGame    Phase = "END_GAME"
)

// IsBreak is true for the pauses between quarters.
func (p Phase) IsBreak() bool {
	return p == PhaseQ1Break || p == PhaseQ3Break || p == PhaseHalftime
}

// Label is the short period marker shown on the scoreboard.
func (p Phase) Label() string {
	switch p {
	case PhaseQ1:
		return "1"
	case PhaseQ2:
		return "2"
	case PhaseQ3:
		return "3"
	case PhaseQ4:
		return "4"
	case PhaseQ1Break:
		return "B1"
	case PhaseQ3Break:
		return "B3"
	case PhaseHalftime:
		return "HT"
	case PhaseEndGame:
		return "FINAL SCORE"
	case PhaseStartDelay:
		return "SD"
	default:
		return "0"
	}
}

// durationKind names which setting sizes the next phase.
type durationKind int

const (
	durationNone durationKind = iota
	durationQuarter
	durationBreak
	durationHalftime
)

type transition struct {
	Next     Phase
	Duration durationKind
}

// transitions is the fixed phase progression. PRE_GAME and START_DELAY share a row.
var transitions = map[Phase]transition{
	PhasePreGame:    {Next: PhaseQ1, Duration: durationQuarter},
	PhaseStartDelay: {Next: PhaseQ1, Duration: durationQuarter},
	PhaseQ1:         {Next: PhaseQ1Break, Duration: durationBreak},
	PhaseQ1Break:    {Next: PhaseQ2, Duration: durationQuarter},
	PhaseQ2:         {Next: PhaseHalftime, Duration: durationHalftime},
	PhaseHalftime:   {Next: PhaseQ3, Duration: durationQuarter},
	PhaseQ3:         {Next: PhaseQ3Break, Duration: durationBreak},
	PhaseQ3Break:    {Next: PhaseQ4, Duration: durationQuarter},
	PhaseQ4:         {Next: PhaseEndGame, Duration: durationNone},
	PhaseEndGame:    {Next: PhasePreGame, Duration: durationQuarter},
}

// Next returns the phase that follows p and its length in seconds under s.
// Unknown phases restart the match cycle.
func Next(p Phase, s Settings) (Phase, int) {
	t, ok := transitions[p]
	if !ok {
		return PhasePreGame, s.QuarterSeconds()
	}
	return t.Next, s.seconds(t.Duration)
}
