package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typeref/internal/model"
)

type palette struct {
	correct   lipgloss.Style
	incorrect lipgloss.Style
	pending   lipgloss.Style
	current   lipgloss.Style
	muted     lipgloss.Style
	accent    lipgloss.Style
	border    lipgloss.Color
}

type colors struct {
	fg, err, pending, current, muted, accent, border string
}

var themeColors = map[model.Theme]colors{
	model.ThemeDark:  {fg: "#F0F0F0", err: "#FF4D4F", pending: "#6E6E6E", current: "#C89A3A", muted: "#6E6E6E", accent: "#C89A3A", border: "#4A4A4A"},
	model.ThemeLight: {fg: "#1F1F1F", err: "#D9363E", pending: "#A0A0A0", current: "#B5651D", muted: "#8C8C8C", accent: "#B5651D", border: "#C8C8C8"},
	model.ThemeGray:  {fg: "#E0E0E0", err: "#FF7875", pending: "#8C8C8C", current: "#BFBFBF", muted: "#8C8C8C", accent: "#D9D9D9", border: "#595959"},
}

func paletteFor(theme model.Theme) palette {
	c, ok := themeColors[theme]
	if !ok {
		c = themeColors[model.ThemeDark]
	}
	return palette{
		correct:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.fg)),
		incorrect: lipgloss.NewStyle().Foreground(lipgloss.Color(c.err)),
		pending:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.pending)),
		current:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.current)),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(c.muted)),
		accent:    lipgloss.NewStyle().Foreground(lipgloss.Color(c.accent)).Bold(true),
		border:    lipgloss.Color(c.border),
	}
}
