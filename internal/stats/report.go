package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/typeref/internal/model"
)

// Lister reads a user's recent records in chronological order.
type Lister interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]model.HistoryRecord, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Records []model.HistoryRecord
	Summary Summary
	Curve   []float64
}

// BuildReport loads the user's history and prepares it for rendering.
func BuildReport(ctx context.Context, lister Lister, cfg model.StatsConfig) (Report, error) {
	if cfg.UserID == "" {
		return Report{}, model.ErrSignInRequired
	}
	records, err := lister.ListRecent(ctx, cfg.UserID, cfg.Limit)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Records: records,
		Summary: Summarize(records),
		Curve:   MovingAverage(WPMSeries(records), cfg.CurveWindow),
	}, nil
}

// Render prints the summary, the curve and the history table.
func (r Report) Render(w io.Writer, totalWidth int) error {
	if err := RenderSummary(w, r.Records); err != nil {
		return err
	}
	if err := RenderCurveWithSize(w, r.Curve, 1, totalWidth, defaultCurveHeight); err != nil {
		return err
	}
	return RenderHistoryTable(w, r.Records)
}
