package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	wrongSpace   = '·'
	visibleLines = 3
)

// cell is one rendered passage rune.
type cell struct {
	text  string
	width int
	space bool
}

// styleCells styles every passage rune against the committed input. A wrong
// keystroke on a space is shown as a dot so it stays visible.
func styleCells(p palette, target, input []rune, cursor int) []cell {
	wordStart, wordEnd := currentWord(target, cursor)
	cells := make([]cell, len(target))
	for i, r := range target {
		shown := r
		var style lipgloss.Style
		switch {
		case i < len(input) && input[i] == r:
			style = p.correct
		case i < len(input):
			style = p.incorrect
			if r == ' ' {
				shown = wrongSpace
			}
		case r != ' ' && i >= wordStart && i < wordEnd:
			style = p.current
		default:
			style = p.pending
		}
		if i == cursor {
			style = style.Underline(true)
		}
		cells[i] = cell{
			text:  style.Render(string(shown)),
			width: runewidth.RuneWidth(shown),
			space: r == ' ',
		}
	}
	return cells
}

// currentWord returns the rune range of the word under the cursor, or of the
// next word when the cursor sits on a space. Without a cursor the first word
// is current.
func currentWord(target []rune, cursor int) (int, int) {
	if cursor < 0 {
		cursor = 0
	}
	start := cursor
	for start < len(target) && target[start] == ' ' {
		start++
	}
	if start == len(target) {
		// Past the last word: keep the final word highlighted.
		end := len(target)
		for end > 0 && target[end-1] == ' ' {
			end--
		}
		start = end
		for start > 0 && target[start-1] != ' ' {
			start--
		}
		return start, end
	}
	for start > 0 && target[start-1] != ' ' {
		start--
	}
	end := start
	for end < len(target) && target[end] != ' ' {
		end++
	}
	return start, end
}

// breakLines word-wraps cells into lines no wider than width. The breaking
// space ends its line; words longer than width are split.
func breakLines(cells []cell, width int) [][]cell {
	if width <= 0 {
		return [][]cell{cells}
	}
	var lines [][]cell
	lineStart, lineWidth, lastSpace := 0, 0, -1
	for i := 0; i < len(cells); i++ {
		c := cells[i]
		if lineWidth+c.width > width && i > lineStart {
			cut := i
			if lastSpace >= lineStart {
				cut = lastSpace + 1
			}
			lines = append(lines, cells[lineStart:cut])
			lineStart, lastSpace = cut, -1
			lineWidth = 0
			for _, rest := range cells[lineStart:i] {
				lineWidth += rest.width
			}
		}
		lineWidth += c.width
		if c.space {
			lastSpace = i
		}
	}
	return append(lines, cells[lineStart:])
}

// lineOf returns the index of the line holding cell index.
func lineOf(lines [][]cell, index int) int {
	seen := 0
	for i, line := range lines {
		seen += len(line)
		if index < seen {
			return i
		}
	}
	return max(0, len(lines)-1)
}

// window keeps n lines in view with one line of context above the cursor
// line.
func window(lines [][]cell, cursorLine, n int) [][]cell {
	if n <= 0 || len(lines) <= n {
		return lines
	}
	first := max(0, cursorLine-1)
	if first+n > len(lines) {
		first = len(lines) - n
	}
	return lines[first : first+n]
}

func renderLines(lines [][]cell) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, c := range line {
			b.WriteString(c.text)
		}
	}
	return b.String()
}
