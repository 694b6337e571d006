package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/typeref/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "typeref.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestListRecentIsChronologicalAndCapped(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < HistoryLimit+5; i++ {
		rec := model.HistoryRecord{
			ID:        fmt.Sprintf("rec-%03d", i),
			UserID:    "alice",
			NetWPM:    i,
			Mode:      model.ModeTime,
			Category:  "avionics",
			Timestamp: int64(1000 + i),
			Date:      "2024-01-01T00:00:00.000Z",
		}
		if err := st.AppendRecord(ctx, rec); err != nil {
			t.Fatalf("append record: %v", err)
		}
	}
	if err := st.AppendRecord(ctx, model.HistoryRecord{ID: "other", UserID: "bob", Timestamp: 5000}); err != nil {
		t.Fatalf("append record: %v", err)
	}

	records, err := st.ListRecent(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(records) != HistoryLimit {
		t.Fatalf("expected %d records, got %d", HistoryLimit, len(records))
	}
	if records[0].NetWPM != 5 || records[len(records)-1].NetWPM != HistoryLimit+4 {
		t.Fatalf("expected newest %d in chronological order, got first=%d last=%d",
			HistoryLimit, records[0].NetWPM, records[len(records)-1].NetWPM)
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp < records[i-1].Timestamp {
			t.Fatalf("records not chronological at %d", i)
		}
	}
	if records[0].Mode != model.ModeTime || records[0].UserID != "alice" {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestAppendRecordRequiresUser(t *testing.T) {
	st := openTestStore(t)
	if err := st.AppendRecord(context.Background(), model.HistoryRecord{ID: "x"}); err == nil {
		t.Fatalf("expected error for record without user")
	}
}

func TestSettingsRoundTripOverDefaults(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	settings, err := st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings != model.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", settings)
	}

	// Older blobs may lack fields; those keep their defaults.
	if err := st.SetValue(ctx, SettingsKey, `{"difficulty":"expert","theme":"dark"}`); err != nil {
		t.Fatalf("set value: %v", err)
	}
	settings, err = st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.Difficulty != model.DifficultyExpert || settings.Theme != model.ThemeDark || !settings.Sound {
		t.Fatalf("unexpected settings %+v", settings)
	}

	settings.IncludeNumbers = true
	if err := st.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	loaded, err := st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if loaded != settings {
		t.Fatalf("expected %+v, got %+v", settings, loaded)
	}

	settings.Theme = "neon"
	if err := st.SaveSettings(ctx, settings); err == nil {
		t.Fatalf("expected invalid theme to be rejected")
	}
}

func TestCategoryAndIdentity(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	cat, err := st.LoadCategory(ctx, "avionics")
	if err != nil || cat != "avionics" {
		t.Fatalf("expected fallback category, got %q (%v)", cat, err)
	}
	if err := st.SaveCategory(ctx, "orbital"); err != nil {
		t.Fatalf("save category: %v", err)
	}
	if cat, _ := st.LoadCategory(ctx, "avionics"); cat != "orbital" {
		t.Fatalf("expected orbital, got %q", cat)
	}

	if _, ok, err := st.LoadIdentity(ctx); ok || err != nil {
		t.Fatalf("expected guest, got ok=%v err=%v", ok, err)
	}
	if err := st.SaveIdentity(ctx, " alice "); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	if id, ok, _ := st.LoadIdentity(ctx); !ok || id != "alice" {
		t.Fatalf("expected alice, got %q", id)
	}
	if err := st.ClearIdentity(ctx); err != nil {
		t.Fatalf("clear identity: %v", err)
	}
	if _, ok, _ := st.LoadIdentity(ctx); ok {
		t.Fatalf("expected guest after clear")
	}
}
