// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/typeref/internal/engine"
	"github.com/verte-zerg/typeref/internal/history"
	"github.com/verte-zerg/typeref/internal/model"
	"github.com/verte-zerg/typeref/internal/stats"
)

// Options carries the collaborators of the typing UI.
type Options struct {
	Theme    model.Theme
	History  *history.Service
	Records  stats.Lister
	Identity history.Identity
	Logger   *zap.Logger
	// Bell receives the terminal bell on wrong keystrokes. Defaults to stderr.
	Bell io.Writer
}

type tickMsg struct {
	gen int
}

type commitMsg struct {
	sessionID string
	rec       model.HistoryRecord
	err       error
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	machine  *engine.Machine
	history  *history.Service
	records  stats.Lister
	identity history.Identity
	logger   *zap.Logger
	bell     io.Writer
	palette  palette

	width  int
	height int

	// tickGen invalidates countdown ticks scheduled for a replaced session.
	tickGen int
	overlay bool
	saving  bool
	notice  string

	summary stats.Summary
	lastWPM int
	hasLast bool
}

// NewModel constructs a typing TUI model around machine.
func NewModel(machine *engine.Machine, opts Options) *Model {
	m := &Model{
		machine:  machine,
		history:  opts.History,
		records:  opts.Records,
		identity: opts.Identity,
		logger:   opts.Logger,
		bell:     opts.Bell,
		palette:  paletteFor(opts.Theme),
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.bell == nil {
		m.bell = os.Stderr
	}
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case commitMsg:
		m.handleCommit(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyTab:
		m.restart()
		return m, nil
	case tea.KeyEsc:
		m.overlay = false
		return m, nil
	case tea.KeyEnter:
		if m.overlay && m.machine.Session().Status == engine.StatusFinished {
			return m, m.commit()
		}
		return m, nil
	case tea.KeyCtrlT:
		cfg := m.machine.Config()
		if cfg.Mode == model.ModeTime {
			cfg.Mode = model.ModeWords
		} else {
			cfg.Mode = model.ModeTime
		}
		m.reconfigure(cfg)
		return m, nil
	case tea.KeyCtrlD:
		cfg := m.machine.Config()
		if cfg.Mode == model.ModeTime {
			cfg.Duration = nextOption(model.Durations, cfg.Duration)
		} else {
			cfg.WordTarget = nextOption(model.WordTargets, cfg.WordTarget)
		}
		m.reconfigure(cfg)
		return m, nil
	case tea.KeyCtrlN:
		cfg := m.machine.Config()
		cfg.Numbers = !cfg.Numbers
		m.reconfigure(cfg)
		return m, nil
	case tea.KeyCtrlP:
		cfg := m.machine.Config()
		cfg.Punctuation = !cfg.Punctuation
		m.reconfigure(cfg)
		return m, nil
	case tea.KeyCtrlE:
		cfg := m.machine.Config()
		if cfg.Difficulty == model.DifficultyExpert {
			cfg.Difficulty = model.DifficultyNormal
		} else {
			cfg.Difficulty = model.DifficultyExpert
		}
		m.reconfigure(cfg)
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		input := []rune(m.machine.Session().InputText())
		if len(input) == 0 {
			return m, nil
		}
		return m, m.input(string(input[:len(input)-1]))
	case tea.KeySpace:
		return m, m.input(m.machine.Session().InputText() + " ")
	case tea.KeyRunes:
		return m, m.input(m.machine.Session().InputText() + string(msg.Runes))
	default:
		return m, nil
	}
}

// input forwards the new field value to the engine and reacts to the
// resulting transition.
func (m *Model) input(value string) tea.Cmd {
	tr := m.machine.Input(value)
	if !tr.Changed {
		return nil
	}
	s := m.machine.Session()
	if s.LastCorrect != nil && !*s.LastCorrect && m.machine.Config().Sound {
		m.ringBell()
	}
	if tr.Ended() {
		m.ended(tr)
		return nil
	}
	if tr.Started() && s.Config.Mode == model.ModeTime {
		return m.scheduleTick()
	}
	return nil
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.gen != m.tickGen {
		return nil
	}
	tr := m.machine.Tick()
	if tr.Ended() {
		m.ended(tr)
		return nil
	}
	if m.machine.Session().Status == engine.StatusRunning {
		return m.scheduleTick()
	}
	return nil
}

func (m *Model) scheduleTick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m *Model) ended(tr engine.Transition) {
	m.overlay = true
	m.notice = ""
	s := m.machine.Session()
	fields := []zap.Field{zap.String("session", s.ID), zap.String("status", string(tr.To))}
	if res, ok := m.machine.Result(); ok {
		fields = append(fields, zap.Int("wpm", res.NetWPM), zap.Int("accuracy", res.Accuracy))
	}
	m.logger.Debug("session ended", fields...)
}

func (m *Model) restart() {
	m.machine.Reset()
	m.tickGen++
	m.overlay = false
	m.notice = ""
}

func (m *Model) reconfigure(cfg model.SessionConfig) {
	m.machine.Reconfigure(cfg)
	m.tickGen++
	m.overlay = false
	m.notice = ""
}

func (m *Model) commit() tea.Cmd {
	if m.saving || m.history == nil {
		return nil
	}
	session := m.machine.Session()
	if m.history.Committed(session.ID) {
		m.notice = "Record already committed."
		return nil
	}
	m.saving = true
	m.notice = "Committing..."
	svc, identity := m.history, m.identity
	return func() tea.Msg {
		rec, err := svc.Commit(context.Background(), identity, session)
		return commitMsg{sessionID: session.ID, rec: rec, err: err}
	}
}

func (m *Model) handleCommit(msg commitMsg) {
	m.saving = false
	current := msg.sessionID == m.machine.Session().ID
	switch {
	case msg.err == nil:
		m.loadFooterStats()
		if current {
			m.notice = "Record committed."
		}
	case !current:
	case errors.Is(msg.err, model.ErrSignInRequired):
		m.notice = "Sign in to commit: run typeref login."
	case errors.Is(msg.err, history.ErrAlreadyCommitted):
		m.notice = "Record already committed."
	default:
		m.notice = "Commit failed; press enter to retry."
	}
}

func (m *Model) loadFooterStats() {
	m.summary = stats.Summary{}
	m.hasLast = false
	if m.records == nil || m.identity == nil {
		return
	}
	userID, ok := m.identity.UserID()
	if !ok {
		return
	}
	records, err := m.records.ListRecent(context.Background(), userID, 0)
	if err != nil {
		m.logger.Warn("failed to load history", zap.Error(err))
		return
	}
	if len(records) == 0 {
		return
	}
	m.summary = stats.Summarize(records)
	m.lastWPM = records[len(records)-1].NetWPM
	m.hasLast = true
}

func (m *Model) ringBell() {
	if _, err := fmt.Fprint(m.bell, "\a"); err != nil {
		m.logger.Debug("bell failed", zap.Error(err))
	}
}

func nextOption(options []int, current int) int {
	for i, v := range options {
		if v == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
