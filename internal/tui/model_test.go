package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typeref/internal/engine"
	"github.com/verte-zerg/typeref/internal/history"
	"github.com/verte-zerg/typeref/internal/model"
)

type fixedGen string

func (g fixedGen) Generate(model.SessionConfig) string { return string(g) }

type memStore struct {
	records []model.HistoryRecord
}

func (s *memStore) AppendRecord(_ context.Context, rec model.HistoryRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *memStore) ListRecent(_ context.Context, userID string, _ int) ([]model.HistoryRecord, error) {
	var out []model.HistoryRecord
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fixture struct {
	model *Model
	store *memStore
	bell  *bytes.Buffer
}

func newFixture(t *testing.T, cfg model.SessionConfig, user string) fixture {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st := &memStore{}
	bell := &bytes.Buffer{}
	machine := engine.NewMachine(fixedGen("ab cd"), cfg, engine.WithClock(func() time.Time { return now }))
	m := NewModel(machine, Options{
		Theme:    model.ThemeDark,
		History:  history.NewService(st),
		Records:  st,
		Identity: history.StaticIdentity(user),
		Bell:     bell,
	})
	return fixture{model: m, store: st, bell: bell}
}

func typeString(m *Model, s string) tea.Cmd {
	var cmd tea.Cmd
	for _, r := range s {
		if r == ' ' {
			_, cmd = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return cmd
}

func wordsCfg() model.SessionConfig {
	return model.SessionConfig{Mode: model.ModeWords, WordTarget: 2, Category: "avionics", Difficulty: model.DifficultyNormal, Sound: true}
}

func TestTypingToTheEndOpensReport(t *testing.T) {
	f := newFixture(t, wordsCfg(), "alice")
	typeString(f.model, "ab cd")
	if f.model.machine.Session().Status != engine.StatusFinished {
		t.Fatalf("expected finished session")
	}
	if !f.model.overlay || !strings.Contains(f.model.View(), "DIAGNOSTIC REPORT") {
		t.Fatalf("expected report overlay")
	}
}

func TestBackspaceDeletesLastRune(t *testing.T) {
	f := newFixture(t, wordsCfg(), "")
	typeString(f.model, "ax")
	f.model.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := f.model.machine.Session().InputText(); got != "a" {
		t.Fatalf("expected %q, got %q", "a", got)
	}
}

func TestWrongKeystrokeRingsBell(t *testing.T) {
	f := newFixture(t, wordsCfg(), "")
	typeString(f.model, "x")
	if f.bell.String() != "\a" {
		t.Fatalf("expected bell, got %q", f.bell.String())
	}

	cfg := wordsCfg()
	cfg.Sound = false
	quiet := newFixture(t, cfg, "")
	typeString(quiet.model, "x")
	if quiet.bell.Len() != 0 {
		t.Fatalf("sound off must not ring")
	}
}

func TestExpertFailureShowsTerminalError(t *testing.T) {
	cfg := wordsCfg()
	cfg.Difficulty = model.DifficultyExpert
	f := newFixture(t, cfg, "alice")
	typeString(f.model, "ax")
	if f.model.machine.Session().Status != engine.StatusFailed {
		t.Fatalf("expected failed session")
	}
	if !strings.Contains(f.model.View(), "TERMINAL ERROR") {
		t.Fatalf("expected failure overlay")
	}
	if _, cmd := f.model.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("failed session must not commit")
	}
	f.model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if s := f.model.machine.Session(); s.Status != engine.StatusIdle || f.model.overlay {
		t.Fatalf("tab must restart, got %s", s.Status)
	}
}

func TestCommitStoresRecordOnce(t *testing.T) {
	f := newFixture(t, wordsCfg(), "alice")
	typeString(f.model, "ab cd")

	_, cmd := f.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !f.model.saving {
		t.Fatalf("expected commit command")
	}
	f.model.Update(cmd())
	if f.model.saving || len(f.store.records) != 1 {
		t.Fatalf("expected one stored record, got %d", len(f.store.records))
	}
	if !f.model.hasLast || f.model.lastWPM != f.store.records[0].NetWPM {
		t.Fatalf("footer stats not refreshed")
	}
	if _, cmd := f.model.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("second commit must be refused")
	}
}

func TestGuestCommitAsksForSignIn(t *testing.T) {
	f := newFixture(t, wordsCfg(), "")
	typeString(f.model, "ab cd")
	_, cmd := f.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	f.model.Update(cmd())
	if len(f.store.records) != 0 {
		t.Fatalf("guest commit must not store")
	}
	if !strings.Contains(f.model.notice, "typeref login") {
		t.Fatalf("unexpected notice %q", f.model.notice)
	}
}

func TestStaleTicksAreIgnored(t *testing.T) {
	cfg := model.SessionConfig{Mode: model.ModeTime, Duration: 15, Category: "avionics", Difficulty: model.DifficultyNormal}
	f := newFixture(t, cfg, "")
	if cmd := typeString(f.model, "a"); cmd == nil {
		t.Fatalf("first keystroke in time mode must schedule a tick")
	}
	stale := tickMsg{gen: f.model.tickGen}
	f.model.Update(tea.KeyMsg{Type: tea.KeyTab})
	f.model.Update(stale)
	if got := f.model.machine.Session().Remaining; got != 15 {
		t.Fatalf("stale tick changed the new session: %d", got)
	}

	typeString(f.model, "a")
	_, cmd := f.model.Update(tickMsg{gen: f.model.tickGen})
	if f.model.machine.Session().Remaining != 14 || cmd == nil {
		t.Fatalf("expected countdown to advance and reschedule")
	}
}

func TestConfigKeysReconfigure(t *testing.T) {
	f := newFixture(t, wordsCfg(), "")
	f.model.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if got := f.model.machine.Config().WordTarget; got != 10 {
		t.Fatalf("expected first word target after unknown value, got %d", got)
	}
	f.model.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if f.model.machine.Config().Mode != model.ModeTime {
		t.Fatalf("expected time mode")
	}
	f.model.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	f.model.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	cfg := f.model.machine.Config()
	if !cfg.Numbers || !cfg.Punctuation {
		t.Fatalf("expected modifiers enabled, got %+v", cfg)
	}
}

func TestRenderFooterFormats(t *testing.T) {
	f := newFixture(t, wordsCfg(), "")
	typeString(f.model, "ab")
	out := f.model.renderFooter()
	for _, want := range []string{"Progress 40%", "WPM", "Guest"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer missing %q: %s", want, out)
		}
	}
}

func TestNextOption(t *testing.T) {
	if got := nextOption([]int{15, 30, 60}, 60); got != 15 {
		t.Fatalf("expected wrap to 15, got %d", got)
	}
	if got := nextOption([]int{15, 30, 60}, 15); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
}
