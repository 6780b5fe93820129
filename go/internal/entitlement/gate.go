package entitlement

import (
	"strings"
	"time"
	"unicode"

	"github.com/jonboulle/clockwork"
)

const (
	// TrialWindow is how long the app runs before activation is required.
	TrialWindow = 30 * time.Minute
	// LicenseWindow is how long one activation lasts (four 30-day months).
	LicenseWindow = 4 * 30 * 24 * time.Hour
)

// State is the persisted entitlement record. Timestamps are Unix milliseconds.
type State struct {
	DeviceID            string `json:"device_id"`
	InstallTimestamp    int64  `json:"install_timestamp"`
	IsActivated         bool   `json:"is_activated"`
	ActivationTimestamp *int64 `json:"activation_timestamp,omitempty"`
}

// Status is the gate's verdict at a point in time.
type Status struct {
	TrialExpired          bool   `json:"trial_expired"`
	LicenseExpired        bool   `json:"license_expired"`
	MustActivate          bool   `json:"must_activate"`
	TrialMinutesRemaining int    `json:"trial_minutes_remaining"`
	IsActivated           bool   `json:"is_activated"`
	LicenseExpiresAt      *int64 `json:"license_expires_at,omitempty"`
}

// Evaluate computes the gate status for state at nowMs.
func Evaluate(state State, nowMs int64) Status {
	sinceInstall := nowMs - state.InstallTimestamp

	st := Status{
		IsActivated:  state.IsActivated,
		TrialExpired: !state.IsActivated && sinceInstall > TrialWindow.Milliseconds(),
	}
	if state.IsActivated && state.ActivationTimestamp != nil {
		st.LicenseExpired = nowMs-*state.ActivationTimestamp > LicenseWindow.Milliseconds()
		expires := *state.ActivationTimestamp + LicenseWindow.Milliseconds()
		st.LicenseExpiresAt = &expires
	}
	st.MustActivate = st.TrialExpired || st.LicenseExpired

	remaining := max(0, TrialWindow.Milliseconds()-sinceInstall)
	minute := time.Minute.Milliseconds()
	st.TrialMinutesRemaining = int((remaining + minute - 1) / minute)
	return st
}

// Ensure fills in the write-once fields on first run. changed reports whether
// state needs to be persisted.
func Ensure(state State, nowMs int64, newDeviceID func() string) (State, bool) {
	changed := false
	if state.DeviceID == "" {
		state.DeviceID = newDeviceID()
		changed = true
	}
	if state.InstallTimestamp == 0 {
		state.InstallTimestamp = nowMs
		changed = true
	}
	return state, changed
}

// Gate evaluates and updates one device's entitlement. It is not safe for
// concurrent mutation; Status may be called from any goroutine that owns it.
type Gate struct {
	state State
	clock clockwork.Clock
}

func NewGate(state State, clock clockwork.Clock) *Gate {
	return &Gate{state: state, clock: clock}
}

func (g *Gate) State() State {
	return g.state
}

func (g *Gate) ExpectedKey() string {
	return ExpectedKey(g.state.DeviceID)
}

func (g *Gate) Status() Status {
	return Evaluate(g.state, g.clock.Now().UnixMilli())
}

// Accept checks input against the device's key, ignoring whitespace. On a match
// the gate is activated and the license window restarts from now. A mismatch
// leaves the state untouched.
func (g *Gate) Accept(input string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input)
	if cleaned != ExpectedKey(g.state.DeviceID) {
		return false
	}

	now := g.clock.Now().UnixMilli()
	g.state.ActivationTimestamp = &now
	g.state.IsActivated = true
	return true
}
