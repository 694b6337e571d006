package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const (
	defaultCurveHeight  = 8
	minCurveWidth       = 10
	axisSeparator       = " │ "
	terminalWidthBackup = 80
)

var blocks = []rune(" ▁▂▃▄▅▆▇█")

// RenderCurve prints the WPM curve over the records, smoothed over window.
func RenderCurve(w io.Writer, values []float64, window int) error {
	return RenderCurveWithSize(w, values, window, 0, defaultCurveHeight)
}

// RenderCurveWithSize prints the curve sized to a given total width. A
// non-positive width uses the terminal width.
func RenderCurveWithSize(w io.Writer, values []float64, window, totalWidth, height int) error {
	if len(values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultCurveHeight
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	smoothed := MovingAverage(values, window)
	_, maxVal := bounds(smoothed)
	top := int(math.Ceil(maxVal))
	if top <= 0 {
		top = 1
	}
	labelWidth := utf8.RuneCountInString(fmt.Sprint(top))
	cols := resample(smoothed, CurveWidthFor(totalWidth, labelWidth))

	if _, err := fmt.Fprintln(w, "WPM Curve"); err != nil {
		return err
	}
	for _, line := range curveLines(cols, float64(top), height, labelWidth) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// CurveWidthFor returns the plot width left after the axis labels.
func CurveWidthFor(totalWidth, labelWidth int) int {
	width := totalWidth - labelWidth - utf8.RuneCountInString(axisSeparator)
	if width < minCurveWidth {
		return minCurveWidth
	}
	return width
}

func curveLines(cols []float64, top float64, height, labelWidth int) []string {
	steps := len(blocks) - 1
	levels := make([]int, len(cols))
	for i, v := range cols {
		levels[i] = int(math.Round(v / top * float64(height*steps)))
	}
	lines := make([]string, 0, height)
	for row := height - 1; row >= 0; row-- {
		label := ""
		switch row {
		case height - 1:
			label = fmt.Sprint(int(top))
		case 0:
			label = "0"
		}
		var b strings.Builder
		b.WriteString(strings.Repeat(" ", labelWidth-utf8.RuneCountInString(label)))
		b.WriteString(label)
		b.WriteString(axisSeparator)
		for _, level := range levels {
			fill := level - row*steps
			fill = max(0, min(fill, steps))
			b.WriteRune(blocks[fill])
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

// resample stretches or shrinks values to width columns. Short series are
// drawn one column per value.
func resample(values []float64, width int) []float64 {
	if len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	ratio := float64(len(values)) / float64(width)
	for i := range out {
		start := int(float64(i) * ratio)
		end := int(float64(i+1) * ratio)
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
