// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typeref/internal/model"
	"github.com/verte-zerg/typeref/internal/stats"
)

const (
	tabOverview = iota
	tabHistory
)

const curveHeight = 8

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	lister stats.Lister
	cfg    model.StatsConfig

	report   stats.Report
	filtered []model.HistoryRecord
	category string
	errMsg   string

	tabs      []string
	activeTab int
	overview  viewport.Model
	history   table.Model

	filterMode  bool
	filterInput textinput.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(lister stats.Lister, cfg model.StatsConfig) *Model {
	m := &Model{
		lister:   lister,
		cfg:      cfg,
		tabs:     []string{"Overview", "History"},
		overview: viewport.New(0, 0),
		history: table.New(
			table.WithColumns(historyColumns()),
			table.WithHeight(1),
		),
		filterInput: textinput.New(),
	}
	m.history.SetStyles(tableStyles())
	m.filterInput.Prompt = "Category: "
	m.filterInput.Placeholder = "all"
	m.filterInput.CharLimit = 32
	m.refreshReport()
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
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h", "right", "l":
			m.activeTab = (m.activeTab + 1) % len(m.tabs)
			if m.activeTab == tabHistory {
				m.history.Focus()
			} else {
				m.history.Blur()
			}
			return m, nil
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "r":
			m.refreshReport()
			return m, nil
		case "/":
			m.filterMode = true
			m.filterInput.SetValue(m.category)
			return m, m.filterInput.Focus()
		}
		var cmd tea.Cmd
		if m.activeTab == tabHistory {
			m.history, cmd = m.history.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filterInput.Blur()
		m.category = strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
		m.applyFilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight := m.layoutHeights()
	header := fitLines(m.renderTabs()+"\n"+m.renderSettings(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	return header + "\n" + body + "\n" + fitLines(m.renderFooter(), m.width, 1)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X")) + 1
	bodyHeight = max(1, m.height-headerHeight-1)
	return headerHeight, bodyHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.history.SetWidth(m.width)
	m.history.SetHeight(max(1, bodyHeight-1))
	m.filterInput.Width = max(10, m.width-lipgloss.Width(m.filterInput.Prompt)-2)
	m.renderOverview()
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.lister, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{}
	} else {
		m.errMsg = ""
		m.report = report
	}
	m.applyFilter()
}

func (m *Model) applyFilter() {
	m.filtered = filterByCategory(m.report.Records, m.category)
	m.history.SetRows(historyRows(m.filtered))
	m.history.GotoTop()
	m.renderOverview()
}

func (m *Model) renderOverview() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	if m.errMsg != "" {
		m.overview.SetContent("Failed to load history.")
		return
	}
	if len(m.filtered) == 0 {
		m.overview.SetContent("No sessions recorded.")
		return
	}
	summary := stats.Summarize(m.filtered)
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", summary.Sessions)),
		metricCard("Avg WPM", fmt.Sprintf("%d", summary.AvgWPM)),
		metricCard("Best WPM", fmt.Sprintf("%d", summary.BestWPM)),
		metricCard("Avg Accuracy", fmt.Sprintf("%d%%", summary.AvgAccuracy)),
	}
	var cardBlock string
	if width < 60 {
		cardBlock = strings.Join(cards, "\n")
	} else {
		cardBlock = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	var buf bytes.Buffer
	if err := stats.RenderCurveWithSize(&buf, stats.WPMSeries(m.filtered), m.cfg.CurveWindow, width, curveHeight); err != nil {
		m.overview.SetContent(fmt.Sprintf("Failed to render curve: %v", err))
		return
	}
	m.overview.SetContent(strings.TrimRight(cardBlock+"\n\n"+buf.String(), "\n"))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderSettings() string {
	category := m.category
	if category == "" {
		category = "all"
	}
	line := fmt.Sprintf("Settings: user=%s  category=%s  window=%d", m.cfg.UserID, category, m.cfg.CurveWindow)
	return headerStyle.Render(truncateLine(line, m.width))
}

func (m *Model) renderBody() string {
	if m.filterMode {
		return "Filter by category (enter to apply, esc to cancel)\n" + m.filterInput.View()
	}
	if m.activeTab == tabHistory {
		if len(m.filtered) == 0 {
			return "No sessions recorded."
		}
		return m.history.View()
	}
	return m.overview.View()
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render("Nav: left/right  Scroll: up/down  Window: -/=  Filter: /  Reload: r  Quit: q")
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Category", Width: 10},
		{Title: "Mode", Width: 5},
		{Title: "WPM", Width: 7},
		{Title: "Accuracy", Width: 8},
		{Title: "Time", Width: 5},
	}
}

// historyRows lists records newest first.
func historyRows(records []model.HistoryRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rows = append(rows, table.Row(stats.HistoryRow(records[i])))
	}
	return rows
}

func filterByCategory(records []model.HistoryRecord, category string) []model.HistoryRecord {
	if category == "" {
		return records
	}
	var out []model.HistoryRecord
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLine(line string, width int) string {
	if w := lipgloss.Width(line); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
