package session

import (
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// rearm cancels the pending tick and schedules a new one when the clock is
// running with time left. The session only ever listens on s.timer, so a
// replaced timer can never deliver a tick.
func (s *Session) rearm() {
	s.stopTimer()
	st := s.engine.State()
	if !st.IsRunning || st.TimeLeftSeconds <= 0 {
		return
	}
	s.timer = s.clock.NewTimer(s.tickInterval)
	log.Debug().
		Str("phase", string(st.Phase)).
		Int("time_left", st.TimeLeftSeconds).
		Msg("tick scheduled")
}

func (s *Session) stopTimer() {
	if s.timer == nil {
		return
	}
	stopAndDrainTimer(s.timer)
	s.timer = nil
}

// stopAndDrainTimer stops a timer and empties its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
