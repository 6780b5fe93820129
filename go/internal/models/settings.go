package models

import "github.com/mcdev12/courtclock/go/internal/match"

// SoundType selects the timbre played at phase boundaries.
type SoundType string

const (
	SoundBuzzer         SoundType = "buzzer"
	SoundWhistleShort   SoundType = "whistle-short"
	SoundWhistleLong    SoundType = "whistle-long"
	SoundWhistleDouble  SoundType = "whistle-double"
	SoundWhistleNetball SoundType = "whistle-netball"
	SoundWhistleHockey  SoundType = "whistle-hockey"
)

// Valid reports whether s is one of the known timbres.
func (s SoundType) Valid() bool {
	switch s {
	case SoundBuzzer, SoundWhistleShort, SoundWhistleLong, SoundWhistleDouble, SoundWhistleNetball, SoundWhistleHockey:
		return true
	}
	return false
}

// GameSettings is the persisted settings record. Layout fields are opaque to
// the server and round-tripped for the display.
type GameSettings struct {
	QuarterLength  int       `json:"quarter_length" yaml:"quarter_length"`
	BreakLength    int       `json:"break_length" yaml:"break_length"`
	HalftimeLength int       `json:"halftime_length" yaml:"halftime_length"`
	SoundType      SoundType `json:"sound_type" yaml:"sound_type"`

	ScoreScale    float64 `json:"score_scale" yaml:"score_scale"`
	LogoSizeScale float64 `json:"logo_size_scale" yaml:"logo_size_scale"`
	TimerScale    float64 `json:"timer_scale" yaml:"timer_scale"`
	TimerX        float64 `json:"timer_x" yaml:"timer_x"`
	TimerY        float64 `json:"timer_y" yaml:"timer_y"`
	HomeScoreX    float64 `json:"home_score_x" yaml:"home_score_x"`
	HomeScoreY    float64 `json:"home_score_y" yaml:"home_score_y"`
	GuestScoreX   float64 `json:"guest_score_x" yaml:"guest_score_x"`
	GuestScoreY   float64 `json:"guest_score_y" yaml:"guest_score_y"`
	MiddleFrameX  float64 `json:"middle_frame_x" yaml:"middle_frame_x"`
	MiddleFrameY  float64 `json:"middle_frame_y" yaml:"middle_frame_y"`
	HomeLogoX     float64 `json:"home_logo_x" yaml:"home_logo_x"`
	HomeLogoY     float64 `json:"home_logo_y" yaml:"home_logo_y"`
	GuestLogoX    float64 `json:"guest_logo_x" yaml:"guest_logo_x"`
	GuestLogoY    float64 `json:"guest_logo_y" yaml:"guest_logo_y"`
	SettingsIconX float64 `json:"settings_icon_x" yaml:"settings_icon_x"`
	SettingsIconY float64 `json:"settings_icon_y" yaml:"settings_icon_y"`
	SpeakerIconX  float64 `json:"speaker_icon_x" yaml:"speaker_icon_x"`
	SpeakerIconY  float64 `json:"speaker_icon_y" yaml:"speaker_icon_y"`

	FavoriteGroups []string `json:"favorite_groups" yaml:"favorite_groups"`
}

// DefaultGameSettings mirrors the factory layout.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		QuarterLength:  match.DefaultQuarterMinutes,
		BreakLength:    match.DefaultBreakMinutes,
		HalftimeLength: match.DefaultHalftimeMinutes,
		SoundType:      SoundWhistleNetball,
		ScoreScale:     1.0,
		LogoSizeScale:  1.0,
		TimerScale:     1.0,
		SettingsIconX:  8,
		SettingsIconY:  92,
		SpeakerIconX:   94,
		SpeakerIconY:   92,
		FavoriteGroups: []string{},
	}
}

// Clock returns the phase lengths the match engine reads.
func (s GameSettings) Clock() match.Settings {
	return match.Settings{
		QuarterMinutes:  s.QuarterLength,
		BreakMinutes:    s.BreakLength,
		HalftimeMinutes: s.HalftimeLength,
	}
}
