package stats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/typeref/internal/model"
	"github.com/verte-zerg/typeref/internal/store"
)

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "typeref.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i, wpm := range []int{30, 50, 70} {
		rec := model.HistoryRecord{
			ID:             fmt.Sprintf("r%d", i),
			UserID:         "alice",
			NetWPM:         wpm,
			Accuracy:       100,
			ElapsedSeconds: 30,
			Mode:           model.ModeTime,
			Category:       "orbital",
			Timestamp:      int64(i+1) * 1000,
			Date:           "2024-01-01T00:00:00.000Z",
		}
		if err := st.AppendRecord(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{UserID: "alice", Limit: 2, CurveWindow: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Records) != 2 || report.Records[0].NetWPM != 50 || report.Records[1].NetWPM != 70 {
		t.Fatalf("unexpected records %+v", report.Records)
	}
	if report.Summary.AvgWPM != 60 || report.Summary.BestWPM != 70 {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
	if len(report.Curve) != 2 || report.Curve[1] != 60 {
		t.Fatalf("unexpected curve %v", report.Curve)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 60); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Summary", "WPM Curve", "History", "orbital"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, buf.String())
		}
	}
}

func TestBuildReportRequiresUser(t *testing.T) {
	_, err := BuildReport(context.Background(), nil, model.StatsConfig{})
	if !errors.Is(err, model.ErrSignInRequired) {
		t.Fatalf("expected ErrSignInRequired, got %v", err)
	}
}
