// Package engine turns a stream of input values into graded typing
// sessions. Every operation takes a Session and returns the next one; the
// previous value is never modified.
package engine

import (
	"time"

	"github.com/verte-zerg/typeref/internal/model"
)

// Status is the lifecycle state of a session.
type Status string

// Session states.
const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// Terminal reports whether no further input is accepted.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusFailed
}

// Session is one practice attempt.
type Session struct {
	ID     string
	Config model.SessionConfig

	Target []rune
	Input  []rune

	Status    Status
	StartedAt time.Time
	EndedAt   time.Time
	Remaining int

	LastTyped   rune
	LastCorrect *bool

	// Strokes holds the instant of every committed append.
	Strokes []time.Time

	Result *Result
}

// NewSession returns an idle session for target.
func NewSession(id string, cfg model.SessionConfig, target string) Session {
	s := Session{
		ID:     id,
		Config: cfg,
		Target: []rune(target),
		Status: StatusIdle,
	}
	if cfg.Mode == model.ModeTime {
		s.Remaining = cfg.Duration
	}
	return s
}

// Started reports whether the first keystroke has been accepted.
func (s Session) Started() bool {
	return !s.StartedAt.IsZero()
}

// TargetText returns the passage as a string.
func (s Session) TargetText() string {
	return string(s.Target)
}

// InputText returns the committed buffer as a string.
func (s Session) InputText() string {
	return string(s.Input)
}

// Expected returns the next character to type.
func (s Session) Expected() (rune, bool) {
	if len(s.Input) >= len(s.Target) {
		return 0, false
	}
	return s.Target[len(s.Input)], true
}

func finish(s Session, now time.Time) Session {
	s.Status = StatusFinished
	s.EndedAt = now
	r := Compute(s, now)
	s.Result = &r
	return s
}
