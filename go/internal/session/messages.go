package session

import (
	"github.com/mcdev12/courtclock/go/internal/models"
	"github.com/mcdev12/courtclock/go/internal/score"
)

// Msg is a command or query for the session goroutine.
type Msg interface{ isSessionMsg() }

type Toggle struct{}

func (Toggle) isSessionMsg() {}

type Skip struct{}

func (Skip) isSessionMsg() {}

// Reset returns the clock to PRE_GAME and zeroes both scores.
type Reset struct{}

func (Reset) isSessionMsg() {}

type AdjustScore struct {
	Side  score.Side
	Delta int
}

func (AdjustScore) isSessionMsg() {}

type UpdateSettings struct {
	Settings models.GameSettings
}

func (UpdateSettings) isSessionMsg() {}

type UpdateTeam struct {
	Side   score.Side
	Update models.TeamUpdate
}

func (UpdateTeam) isSessionMsg() {}

type SetMuted struct{ Muted bool }

func (SetMuted) isSessionMsg() {}

// RecordMatch appends the current teams to the history.
type RecordMatch struct{}

func (RecordMatch) isSessionMsg() {}

type DeleteMatch struct{ ID string }

func (DeleteMatch) isSessionMsg() {}

type ClearHistory struct{}

func (ClearHistory) isSessionMsg() {}

type SaveProfile struct{ Name string }

func (SaveProfile) isSessionMsg() {}

type DeleteProfile struct{ ID string }

func (DeleteProfile) isSessionMsg() {}

type LoadProfile struct{ ID string }

func (LoadProfile) isSessionMsg() {}

type Activate struct{ Key string }

func (Activate) isSessionMsg() {}

type GetState struct{}

func (GetState) isSessionMsg() {}

type ListHistory struct{}

func (ListHistory) isSessionMsg() {}

type ListProfiles struct{}

func (ListProfiles) isSessionMsg() {}

type EntitlementStatus struct{}

func (EntitlementStatus) isSessionMsg() {}

// Result is the reply to a Msg. Value holds the query payload, if any.
type Result struct {
	Snapshot Snapshot
	Value    any
	Err      error
}

type envelope struct {
	msg   Msg
	reply chan Result
}

// gated reports whether msg is refused while activation is required.
func gated(msg Msg) bool {
	switch msg.(type) {
	case Activate, SetMuted, GetState, ListHistory, ListProfiles, EntitlementStatus:
		return false
	}
	return true
}
