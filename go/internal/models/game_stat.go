package models

import "github.com/mcdev12/courtclock/go/internal/match"

// GameStat is one entry in the match history.
type GameStat struct {
	ID          string      `json:"id"`
	Timestamp   int64       `json:"timestamp"`
	HomeConfig  TeamConfig  `json:"home_config"`
	GuestConfig TeamConfig  `json:"guest_config"`
	FinalPhase  match.Phase `json:"final_phase"`
}
