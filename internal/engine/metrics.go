package engine

import (
	"math"
	"time"
)

const (
	charsPerWord = 5.0

	// minElapsedMinutes keeps the rates finite before the first keystroke.
	minElapsedMinutes = 1.0 / 600000
)

// Result is the scored snapshot of a session.
type Result struct {
	NetWPM         int `json:"wpm"`
	RawWPM         int `json:"rawWpm"`
	Accuracy       int `json:"accuracy"`
	Errors         int `json:"errors"`
	ElapsedSeconds int `json:"timeTaken"`
	Consistency    int `json:"consistency"`
}

// Compute derives the metrics for s as of now. It is safe to call at any
// point of the session.
func Compute(s Session, now time.Time) Result {
	elapsed := Elapsed(s, now)
	minutes := elapsed.Minutes()
	if minutes < minElapsedMinutes {
		minutes = minElapsedMinutes
	}

	typed := len(s.Input)
	errors := countErrors(s.Input, s.Target)
	correct := typed - errors

	accuracy := 0
	if typed > 0 {
		accuracy = int(math.Round(float64(correct) / float64(typed) * 100))
	}
	return Result{
		NetWPM:         rate(correct, minutes),
		RawWPM:         rate(typed, minutes),
		Accuracy:       accuracy,
		Errors:         errors,
		ElapsedSeconds: int(math.Round(elapsed.Seconds())),
		Consistency:    Consistency(s.Strokes),
	}
}

// Consistency scores the regularity of keystroke intervals from 0 to 100
// as one minus their coefficient of variation. It needs at least two
// intervals.
func Consistency(strokes []time.Time) int {
	if len(strokes) < 3 {
		return 0
	}
	intervals := make([]float64, 0, len(strokes)-1)
	var sum float64
	for i := 1; i < len(strokes); i++ {
		d := float64(strokes[i].Sub(strokes[i-1])) / float64(time.Millisecond)
		intervals = append(intervals, d)
		sum += d
	}
	mean := sum / float64(len(intervals))
	if mean <= 0 {
		return 0
	}
	var sq float64
	for _, d := range intervals {
		sq += (d - mean) * (d - mean)
	}
	stddev := math.Sqrt(sq / float64(len(intervals)))
	score := math.Round(100 * (1 - stddev/mean))
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return int(score)
}

func countErrors(input, target []rune) int {
	errors := 0
	for i, r := range input {
		if i >= len(target) || r != target[i] {
			errors++
		}
	}
	return errors
}

func rate(chars int, minutes float64) int {
	v := math.Round(float64(chars) / charsPerWord / minutes)
	if v < 0 {
		return 0
	}
	return int(v)
}
