package session

import (
	"time"

	"github.com/mcdev12/courtclock/go/internal/entitlement"
	"github.com/mcdev12/courtclock/go/internal/match"
	"github.com/mcdev12/courtclock/go/internal/models"
	"github.com/mcdev12/courtclock/go/internal/score"
)

// Snapshot is everything a display needs to render the board.
type Snapshot struct {
	Clock       match.State         `json:"clock"`
	PhaseLabel  string              `json:"phase_label"`
	IsBreak     bool                `json:"is_break"`
	Home        models.TeamConfig   `json:"home"`
	Guest       models.TeamConfig   `json:"guest"`
	Settings    models.GameSettings `json:"settings"`
	Muted       bool                `json:"muted"`
	DeviceID    string              `json:"device_id"`
	Entitlement entitlement.Status  `json:"entitlement"`
}

// SoundTrigger fires once each time the countdown crosses from 1 to 0.
type SoundTrigger struct {
	SoundType models.SoundType `json:"sound_type"`
	Muted     bool             `json:"muted"`
	Phase     match.Phase      `json:"phase"`
	FiredAt   time.Time        `json:"fired_at"`
}

type NoticeType string

const (
	// NoticeState follows every committed operator command.
	NoticeState NoticeType = "StateChanged"
	// NoticeTick follows every clock tick.
	NoticeTick           NoticeType = "Tick"
	NoticeSound          NoticeType = "Sound"
	NoticePhaseChanged   NoticeType = "PhaseChanged"
	NoticeScoreChanged   NoticeType = "ScoreChanged"
	NoticeMatchConcluded NoticeType = "MatchConcluded"
	NoticeActivated      NoticeType = "Activated"
)

// Notice is what observers receive after a state change.
type Notice struct {
	Type     NoticeType
	Snapshot Snapshot
	Sound    *SoundTrigger
	From     match.Phase
	To       match.Phase
	Side     score.Side
	Stat     *models.GameStat
}

// Observer is notified on the session goroutine. Implementations must not block.
type Observer interface {
	Notify(n Notice)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(n Notice)

func (f ObserverFunc) Notify(n Notice) { f(n) }
