package match

const (
	DefaultQuarterMinutes  = 15
	DefaultBreakMinutes    = 2
	DefaultHalftimeMinutes = 5

	// StartDelaySeconds is the fixed countdown before Q1.
	StartDelaySeconds = 10
)

// Settings are the phase lengths in minutes. Non-positive values fall back to the defaults.
type Settings struct {
	QuarterMinutes  int
	BreakMinutes    int
	HalftimeMinutes int
}

// DefaultSettings returns the stock 15/2/5 minute layout.
func DefaultSettings() Settings {
	return Settings{
		QuarterMinutes:  DefaultQuarterMinutes,
		BreakMinutes:    DefaultBreakMinutes,
		HalftimeMinutes: DefaultHalftimeMinutes,
	}
}

func (s Settings) QuarterSeconds() int {
	return minutesOr(s.QuarterMinutes, DefaultQuarterMinutes) * 60
}

func (s Settings) BreakSeconds() int {
	return minutesOr(s.BreakMinutes, DefaultBreakMinutes) * 60
}

func (s Settings) HalftimeSeconds() int {
	return minutesOr(s.HalftimeMinutes, DefaultHalftimeMinutes) * 60
}

func (s Settings) seconds(kind durationKind) int {
	switch kind {
	case durationQuarter:
		return s.QuarterSeconds()
	case durationBreak:
		return s.BreakSeconds()
	case durationHalftime:
		return s.HalftimeSeconds()
	default:
		return 0
	}
}

func minutesOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
