package models

// SettingsProfile is a named snapshot of settings and both team records.
type SettingsProfile struct {
	ID          string       `json:"id"`
	ProfileName string       `json:"profile_name"`
	CreatedAt   int64        `json:"created_at"`
	Settings    GameSettings `json:"settings"`
	HomeTeam    TeamConfig   `json:"home_team"`
	GuestTeam   TeamConfig   `json:"guest_team"`
}
