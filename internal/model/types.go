// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Mode fixes the completion condition of a session.
type Mode string

// Supported test modes.
const (
	ModeTime  Mode = "time"
	ModeWords Mode = "words"
)

// Difficulty selects the grading discipline.
type Difficulty string

// Supported difficulties.
const (
	DifficultyNormal Difficulty = "normal"
	DifficultyExpert Difficulty = "expert"
)

// Theme is a presentation preference carried in settings.
type Theme string

// Supported themes.
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
	ThemeGray  Theme = "gray"
)

// Durations and word targets offered by the practice UI.
var (
	Durations   = []int{15, 30, 60, 120}
	WordTargets = []int{10, 25, 50, 100}
)

// SessionConfig fixes everything a session needs before generation.
type SessionConfig struct {
	Mode        Mode       `json:"mode"`
	Duration    int        `json:"duration"`
	WordTarget  int        `json:"words"`
	Category    string     `json:"category"`
	Numbers     bool       `json:"numbers"`
	Punctuation bool       `json:"punctuation"`
	Difficulty  Difficulty `json:"difficulty"`
	Sound       bool       `json:"sound"`
}

// Default session lengths before any flag or setting picks one.
const (
	DefaultDuration   = 30
	DefaultWordTarget = 25
)

// Upper bounds on a single session.
const (
	MaxDuration   = 3600
	MaxWordTarget = 1000
)

// Validate reports the first invalid field.
func (c SessionConfig) Validate() error {
	switch c.Mode {
	case ModeTime:
		if c.Duration <= 0 || c.Duration > MaxDuration {
			return fmt.Errorf("duration must be between 1 and %d seconds", MaxDuration)
		}
	case ModeWords:
		if c.WordTarget <= 0 || c.WordTarget > MaxWordTarget {
			return fmt.Errorf("word target must be between 1 and %d", MaxWordTarget)
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.Difficulty {
	case DifficultyNormal, DifficultyExpert:
	default:
		return fmt.Errorf("unknown difficulty %q", c.Difficulty)
	}
	return nil
}

// Settings is the persisted preference blob.
type Settings struct {
	Difficulty         Difficulty `json:"difficulty"`
	Sound              bool       `json:"sound"`
	Theme              Theme      `json:"theme"`
	IncludeNumbers     bool       `json:"includeNumbers"`
	IncludePunctuation bool       `json:"includePunctuation"`
	DefaultTestMode    Mode       `json:"defaultTestMode"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{
		Difficulty:      DifficultyNormal,
		Sound:           true,
		Theme:           ThemeLight,
		DefaultTestMode: ModeTime,
	}
}

// SessionConfig returns the session parameters implied by the settings.
func (s Settings) SessionConfig(category string) SessionConfig {
	return SessionConfig{
		Mode:        s.DefaultTestMode,
		Duration:    DefaultDuration,
		WordTarget:  DefaultWordTarget,
		Category:    category,
		Numbers:     s.IncludeNumbers,
		Punctuation: s.IncludePunctuation,
		Difficulty:  s.Difficulty,
		Sound:       s.Sound,
	}
}

// Validate rejects values outside the recognized options.
func (s Settings) Validate() error {
	switch s.Difficulty {
	case DifficultyNormal, DifficultyExpert:
	default:
		return fmt.Errorf("unknown difficulty %q", s.Difficulty)
	}
	switch s.Theme {
	case ThemeDark, ThemeLight, ThemeGray:
	default:
		return fmt.Errorf("unknown theme %q", s.Theme)
	}
	switch s.DefaultTestMode {
	case ModeTime, ModeWords:
	default:
		return fmt.Errorf("unknown test mode %q", s.DefaultTestMode)
	}
	return nil
}

// HistoryRecord is one committed result.
type HistoryRecord struct {
	ID             string `json:"id"`
	UserID         string `json:"-"`
	NetWPM         int    `json:"wpm"`
	RawWPM         int    `json:"rawWpm"`
	Accuracy       int    `json:"accuracy"`
	Errors         int    `json:"errors"`
	ElapsedSeconds int    `json:"timeTaken"`
	Consistency    int    `json:"consistency"`
	Mode           Mode   `json:"mode"`
	Category       string `json:"category"`
	Timestamp      int64  `json:"timestamp"`
	Date           string `json:"date"`
}

// Time returns the record timestamp.
func (r HistoryRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	UserID      string
	Limit       int
	CurveWindow int
}
