package models

// LogoCrop positions a team logo inside its frame.
type LogoCrop struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Scale float64 `json:"scale" yaml:"scale"`
}

// TeamConfig is the persisted record for one side of the scoreboard.
type TeamConfig struct {
	Name      string   `json:"name" yaml:"name"`
	LogoURL   *string  `json:"logo_url" yaml:"logo_url"`
	LogoCrop  LogoCrop `json:"logo_crop" yaml:"logo_crop"`
	Score     int      `json:"score" yaml:"-"`
	Color     string   `json:"color" yaml:"color"`
	TextColor string   `json:"text_color" yaml:"text_color"`
}

// NewTeamConfig returns a blank team with the given name and colour.
func NewTeamConfig(name, color string) TeamConfig {
	return TeamConfig{
		Name:      name,
		Color:     color,
		TextColor: "#ffffff",
		LogoCrop:  LogoCrop{Scale: 1},
	}
}

func DefaultHomeTeam() TeamConfig {
	return NewTeamConfig("HOME", "#ef4444")
}

func DefaultGuestTeam() TeamConfig {
	return NewTeamConfig("GUEST", "#eab308")
}

// TeamUpdate is a partial edit of a team record. Nil fields are left unchanged.
// The score is never edited through here.
type TeamUpdate struct {
	Name      *string   `json:"name,omitempty"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	ClearLogo bool      `json:"clear_logo,omitempty"`
	LogoCrop  *LogoCrop `json:"logo_crop,omitempty"`
	Color     *string   `json:"color,omitempty"`
	TextColor *string   `json:"text_color,omitempty"`
}

// Apply returns t with u merged in.
func (u TeamUpdate) Apply(t TeamConfig) TeamConfig {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.ClearLogo {
		t.LogoURL = nil
	} else if u.LogoURL != nil {
		logo := *u.LogoURL
		t.LogoURL = &logo
	}
	if u.LogoCrop != nil {
		t.LogoCrop = *u.LogoCrop
	}
	if u.Color != nil {
		t.Color = *u.Color
	}
	if u.TextColor != nil {
		t.TextColor = *u.TextColor
	}
	return t
}
