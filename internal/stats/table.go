package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one table column. A positive max truncates wider cells
// with an ellipsis.
type column struct {
	title string
	right bool
	max   int
}

var historyTable = []column{
	{title: "Date"},
	{title: "Category", max: 16},
	{title: "Mode"},
	{title: "WPM", right: true},
	{title: "Accuracy", right: true},
	{title: "Time", right: true},
}

// layoutTable renders the header and rows as aligned lines.
func layoutTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	cells := make([][]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
	}
	cells = append(cells, header)
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			if i < len(row) {
				line[i] = clip(row[i], c.max)
			}
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(cols))
	for _, line := range cells {
		for i, cell := range line {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	lines := make([]string, 0, len(cells))
	for _, line := range cells {
		var b strings.Builder
		for i, cell := range line {
			if i > 0 {
				b.WriteByte(' ')
			}
			pad := strings.Repeat(" ", widths[i]-displayWidth(cell))
			if cols[i].right {
				b.WriteString(pad + cell)
			} else {
				b.WriteString(cell + pad)
			}
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

func clip(cell string, width int) string {
	if width <= 0 || displayWidth(cell) <= width {
		return cell
	}
	return runewidth.Truncate(cell, width, "…")
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
