package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typeref/internal/engine"
	"github.com/verte-zerg/typeref/internal/model"
)

const contentRatio = 0.70

// View implements tea.Model.
func (m *Model) View() string {
	s := m.machine.Session()
	if len(s.Target) == 0 {
		return ""
	}
	var content string
	if m.overlay && s.Status.Terminal() {
		content = m.renderReport(s)
	} else {
		content = m.renderPassage(s)
	}
	if m.width == 0 || m.height == 0 {
		return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
	}
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	header := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderHeader())
	body := lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, content)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return header + "\n" + body + "\n" + footer
}

func (m *Model) renderPassage(s engine.Session) string {
	cursorIndex := -1
	if !s.Status.Terminal() && len(s.Input) < len(s.Target) {
		cursorIndex = len(s.Input)
	}
	cells := styleCells(m.palette, s.Target, s.Input, cursorIndex)
	if m.width == 0 {
		return renderLines([][]cell{cells})
	}
	contentWidth := max(1, int(float64(m.width)*contentRatio))
	lines := breakLines(cells, contentWidth)
	lines = window(lines, lineOf(lines, len(s.Input)), visibleLines)
	return lipgloss.NewStyle().Width(contentWidth).Render(renderLines(lines))
}

func (m *Model) renderHeader() string {
	cfg := m.machine.Config()
	segments := []string{"typeref"}
	if cfg.Mode == model.ModeTime {
		segments = append(segments, fmt.Sprintf("time %ds", cfg.Duration))
	} else {
		segments = append(segments, fmt.Sprintf("words %d", cfg.WordTarget))
	}
	segments = append(segments, cfg.Category, string(cfg.Difficulty))
	if cfg.Numbers {
		segments = append(segments, "numbers")
	}
	if cfg.Punctuation {
		segments = append(segments, "punct")
	}
	return m.palette.muted.Render(strings.Join(segments, " · "))
}

func (m *Model) renderFooter() string {
	s := m.machine.Session()
	if len(s.Target) == 0 {
		return ""
	}
	var segments []string
	if s.Config.Mode == model.ModeTime {
		segments = append(segments, fmt.Sprintf("Time %ds", s.Remaining))
	} else {
		progress := int(float64(len(s.Input)) / float64(len(s.Target)) * 100)
		segments = append(segments, fmt.Sprintf("Progress %d%%", progress))
	}
	live := m.machine.Live()
	segments = append(segments, fmt.Sprintf("%d WPM · %d%%", live.NetWPM, live.Accuracy))
	if m.hasLast {
		segments = append(segments,
			fmt.Sprintf("Last %d WPM", m.lastWPM),
			fmt.Sprintf("Avg %d WPM · %d%%", m.summary.AvgWPM, m.summary.AvgAccuracy))
	} else if !m.signedIn() {
		segments = append(segments, "Guest")
	}
	segments = append(segments, "tab restart")
	return m.palette.muted.Render(strings.Join(segments, "  "))
}

func (m *Model) renderReport(s engine.Session) string {
	var lines []string
	if s.Status == engine.StatusFailed {
		lines = append(lines,
			m.palette.incorrect.Bold(true).Render("TERMINAL ERROR"),
			"",
			"Expert mode ends on the first wrong keystroke.")
		if want, ok := s.Expected(); ok {
			lines = append(lines, fmt.Sprintf("Expected %q, typed %q.", want, s.LastTyped))
		}
		lines = append(lines, "", m.palette.muted.Render("tab restart  esc close"))
	} else {
		res, _ := m.machine.Result()
		lines = append(lines,
			m.palette.accent.Render("DIAGNOSTIC REPORT"),
			"",
			fmt.Sprintf("%-16s%s", "Speed / Net", fmt.Sprintf("%d WPM", res.NetWPM)),
			fmt.Sprintf("%-16s%s", "Speed / Raw", fmt.Sprintf("%d WPM", res.RawWPM)),
			fmt.Sprintf("%-16s%d%%", "Accuracy", res.Accuracy),
			fmt.Sprintf("%-16s%d", "Errors", res.Errors),
			fmt.Sprintf("%-16s%ds", "Time", res.ElapsedSeconds),
			fmt.Sprintf("%-16s%d%%", "Consistency", res.Consistency),
			"")
		hint := "enter commit  tab restart  esc close"
		if !m.signedIn() {
			hint = "enter sign-in required  tab restart  esc close"
		}
		lines = append(lines, m.palette.muted.Render(hint))
	}
	if m.notice != "" {
		lines = append(lines, m.palette.current.Render(m.notice))
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), true).
		BorderForeground(m.palette.border).
		Padding(1, 2)
	return box.Render(strings.Join(lines, "\n"))
}

func (m *Model) signedIn() bool {
	if m.identity == nil {
		return false
	}
	_, ok := m.identity.UserID()
	return ok
}
