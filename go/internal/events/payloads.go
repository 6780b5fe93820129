package events

import (
	"time"
)

// Payload types shared by the relay and downstream consumers.

// PhaseChangedPayload is the payload for a PhaseChanged event
type PhaseChangedPayload struct {
	From            string    `json:"from"`
	To              string    `json:"to"`
	PhaseLabel      string    `json:"phase_label"`
	TimeLeftSeconds int       `json:"time_left_seconds"`
	IsRunning       bool      `json:"is_running"`
	ChangedAt       time.Time `json:"changed_at"`
}

// ScoreChangedPayload is the payload for a ScoreChanged event
type ScoreChangedPayload struct {
	Side       string    `json:"side"`
	HomeName   string    `json:"home_name"`
	HomeScore  int       `json:"home_score"`
	GuestName  string    `json:"guest_name"`
	GuestScore int       `json:"guest_score"`
	Phase      string    `json:"phase"`
	ChangedAt  time.Time `json:"changed_at"`
}

// MatchConcludedPayload is the payload for a MatchConcluded event
type MatchConcludedPayload struct {
	MatchID    string    `json:"match_id"`
	HomeName   string    `json:"home_name"`
	HomeScore  int       `json:"home_score"`
	GuestName  string    `json:"guest_name"`
	GuestScore int       `json:"guest_score"`
	FinalPhase string    `json:"final_phase"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ActivatedPayload is the payload for an Activated event
type ActivatedPayload struct {
	LicenseExpiresAt *time.Time `json:"license_expires_at,omitempty"`
	ActivatedAt      time.Time  `json:"activated_at"`
}
