package engine

import (
	"time"

	"github.com/verte-zerg/typeref/internal/model"
)

// ApplyInput grades the latest value of the input field. A value shorter
// than the committed buffer is a deletion; anything else is graded at its
// final position only. The boolean is false when the session is unchanged.
func ApplyInput(s Session, value string, now time.Time) (Session, bool) {
	if s.Status.Terminal() {
		return s, false
	}
	runes := []rune(value)
	if len(runes) < len(s.Input) {
		next := s
		next.Input = runes
		next.LastTyped = 0
		next.LastCorrect = nil
		return next, true
	}
	if len(runes) > len(s.Target) {
		runes = runes[:len(s.Target)]
	}
	if len(runes) == 0 {
		return s, false
	}

	next := s
	if !next.Started() {
		next.StartedAt = now
		next.Status = StatusRunning
	}

	pos := len(runes) - 1
	typed := runes[pos]
	correct := typed == s.Target[pos]
	next.LastTyped = typed
	next.LastCorrect = &correct

	if s.Config.Difficulty == model.DifficultyExpert && !correct {
		next.Status = StatusFailed
		next.EndedAt = now
		return next, true
	}

	next.Input = runes
	next.Strokes = append(append(make([]time.Time, 0, len(s.Strokes)+1), s.Strokes...), now)
	if len(next.Input) == len(next.Target) {
		next = finish(next, now)
	}
	return next, true
}
