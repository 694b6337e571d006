package engine

import (
	"time"

	"github.com/verte-zerg/typeref/internal/model"
)

// Elapsed returns the time spent typing. It is zero before the first
// keystroke and frozen once the session ends.
func Elapsed(s Session, now time.Time) time.Duration {
	if !s.Started() {
		return 0
	}
	end := now
	if !s.EndedAt.IsZero() {
		end = s.EndedAt
	}
	d := end.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Deadline returns when the countdown of a running timed session expires.
func Deadline(s Session) (time.Time, bool) {
	if !countdownActive(s) {
		return time.Time{}, false
	}
	return s.StartedAt.Add(time.Duration(s.Config.Duration) * time.Second), true
}

// Tick advances the countdown by one second and finishes the session when
// it reaches zero.
func Tick(s Session, now time.Time) (Session, bool) {
	if !countdownActive(s) {
		return s, false
	}
	next := s
	next.Remaining--
	if next.Remaining <= 0 {
		next.Remaining = 0
		next = finish(next, now)
	}
	return next, true
}

// Sync applies every tick that is due by now. Each tick is stamped with the
// second it belongs to, so an expired session ends exactly at its deadline.
func Sync(s Session, now time.Time) (Session, bool) {
	if !countdownActive(s) {
		return s, false
	}
	due := s.Config.Duration - int(Elapsed(s, now)/time.Second)
	changed := false
	for countdownActive(s) && s.Remaining > due {
		at := s.StartedAt.Add(time.Duration(s.Config.Duration-s.Remaining+1) * time.Second)
		s, _ = Tick(s, at)
		changed = true
	}
	return s, changed
}

func countdownActive(s Session) bool {
	return s.Config.Mode == model.ModeTime && s.Status == StatusRunning && s.Started()
}
