package score

import "errors"

var ErrUnknownSide = errors.New("unknown side")
var ErrInvalidDelta = errors.New("delta must be +1 or -1")

type Side string

const (
	SideHome  Side = "home"
	SideGuest Side = "guest"
)

// ParseSide maps an operator-facing side name to a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideHome, SideGuest:
		return Side(s), nil
	default:
		return "", ErrUnknownSide
	}
}

// Ledger holds the two running scores. Neither ever drops below zero.
type Ledger struct {
	Home  int `json:"home"`
	Guest int `json:"guest"`
}

// Adjust applies a single +1/-1 step to one side and returns the new value.
func (l *Ledger) Adjust(side Side, delta int) (int, error) {
	if delta != 1 && delta != -1 {
		return 0, ErrInvalidDelta
	}
	var target *int
	switch side {
	case SideHome:
		target = &l.Home
	case SideGuest:
		target = &l.Guest
	default:
		return 0, ErrUnknownSide
	}
	*target = max(0, *target+delta)
	return *target, nil
}

func (l *Ledger) Get(side Side) int {
	if side == SideGuest {
		return l.Guest
	}
	return l.Home
}

// Reset zeroes both scores.
func (l *Ledger) Reset() {
	l.Home, l.Guest = 0, 0
}

// SwipeThreshold is the vertical travel, in pixels, a score gesture must exceed.
const SwipeThreshold = 30

// GestureDelta resolves a vertical drag into one adjustment step. startY and
// endY are screen coordinates (y grows downward), so dragging up increments.
// ok is false when the drag stays within the threshold.
func GestureDelta(startY, endY float64) (delta int, ok bool) {
	diff := startY - endY
	if diff > SwipeThreshold {
		return 1, true
	}
	if diff < -SwipeThreshold {
		return -1, true
	}
	return 0, false
}
