// Package stats contains history summaries and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/typeref/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary holds the aggregates shown above the history table.
type Summary struct {
	Sessions    int `json:"sessions"`
	AvgWPM      int `json:"avgWpm"`
	BestWPM     int `json:"bestWpm"`
	AvgAccuracy int `json:"avgAccuracy"`
}

// Summarize aggregates records. An empty history yields zeros.
func Summarize(records []model.HistoryRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	var totalWPM, totalAcc int
	best := records[0].NetWPM
	for _, r := range records {
		totalWPM += r.NetWPM
		totalAcc += r.Accuracy
		if r.NetWPM > best {
			best = r.NetWPM
		}
	}
	count := float64(len(records))
	return Summary{
		Sessions:    len(records),
		AvgWPM:      int(math.Round(float64(totalWPM) / count)),
		BestWPM:     best,
		AvgAccuracy: int(math.Round(float64(totalAcc) / count)),
	}
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := bounds(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func bounds(values []float64) (float64, float64) {
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

// WPMSeries returns net WPM per record in the given order.
func WPMSeries(records []model.HistoryRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = float64(r.NetWPM)
	}
	return out
}

// RenderSummary prints the aggregate block.
func RenderSummary(w io.Writer, records []model.HistoryRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded.")
		return err
	}
	s := Summarize(records)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Avg WPM: %d", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %d%%", s.AvgAccuracy),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistoryTable prints records newest first. Records are expected in
// chronological order.
func RenderHistoryTable(w io.Writer, records []model.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "History"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rows = append(rows, HistoryRow(records[i]))
	}
	for _, line := range layoutTable(historyTable, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// HistoryRow formats one record as table cells.
func HistoryRow(r model.HistoryRecord) []string {
	return []string{
		r.Time().Local().Format("2006-01-02"),
		r.Category,
		string(r.Mode),
		fmt.Sprintf("%d WPM", r.NetWPM),
		fmt.Sprintf("%d%%", r.Accuracy),
		fmt.Sprintf("%ds", r.ElapsedSeconds),
	}
}
