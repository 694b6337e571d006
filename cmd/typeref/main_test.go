package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeref/internal/config"
	"github.com/verte-zerg/typeref/internal/generator"
	"github.com/verte-zerg/typeref/internal/model"
	"github.com/verte-zerg/typeref/internal/store"
)

func setFlags(t *testing.T, cmd *cobra.Command, kv ...string) {
	t.Helper()
	for i := 0; i+1 < len(kv); i += 2 {
		if err := cmd.Flags().Set(kv[i], kv[i+1]); err != nil {
			t.Fatalf("set --%s: %v", kv[i], err)
		}
	}
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func TestResolveSessionConfigUsesStoredSettings(t *testing.T) {
	cmd := newRootCmd()
	settings := model.DefaultSettings()
	settings.DefaultTestMode = model.ModeWords
	settings.Difficulty = model.DifficultyExpert
	settings.IncludeNumbers = true
	settings.Sound = false

	cfg, err := resolveSessionConfig(cmd, config.FileConfig{}, settings, "orbital")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := model.SessionConfig{
		Mode:       model.ModeWords,
		Duration:   model.DefaultDuration,
		WordTarget: model.DefaultWordTarget,
		Category:   "orbital",
		Numbers:    true,
		Difficulty: model.DifficultyExpert,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestResolveSessionConfigPrecedence(t *testing.T) {
	cmd := newRootCmd()
	settings := model.DefaultSettings()
	settings.DefaultTestMode = model.ModeWords
	settings.Difficulty = model.DifficultyExpert
	fileCfg := config.FileConfig{Practice: config.PracticeConfig{
		Mode:     strPtr("time"),
		Duration: intPtr(60),
		Words:    intPtr(50),
	}}
	setFlags(t, cmd, "duration", "15", "expert", "false", "punct", "true")

	cfg, err := resolveSessionConfig(cmd, fileCfg, settings, "avionics")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Mode != model.ModeTime {
		t.Fatalf("config file must override stored mode, got %s", cfg.Mode)
	}
	if cfg.Duration != 15 {
		t.Fatalf("flag must override config file, got %d", cfg.Duration)
	}
	if cfg.WordTarget != 50 {
		t.Fatalf("expected words from config file, got %d", cfg.WordTarget)
	}
	if cfg.Difficulty != model.DifficultyNormal || !cfg.Punctuation {
		t.Fatalf("expected flags to override settings, got %+v", cfg)
	}
}

func TestResolveSessionConfigValidation(t *testing.T) {
	cases := []struct {
		name  string
		flags []string
		want  string
	}{
		{"mode", []string{"mode", "marathon"}, "--mode"},
		{"duration", []string{"duration", "0"}, "--duration"},
		{"words", []string{"words", "-1"}, "--words"},
		{"long duration", []string{"duration", "7200"}, "--duration"},
		{"too many words", []string{"words", "2000000"}, "--words"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := newRootCmd()
			setFlags(t, cmd, tc.flags...)
			_, err := resolveSessionConfig(cmd, config.FileConfig{}, model.DefaultSettings(), "avionics")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %s error, got %v", tc.want, err)
			}
		})
	}
}

func TestResolveCategory(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "typeref.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	ctx := context.Background()
	banks := generator.DefaultBanks()

	cmd := newRootCmd()
	if got, err := resolveCategory(ctx, cmd, st, banks); err != nil || got != generator.DefaultCategory {
		t.Fatalf("expected default category, got %q (%v)", got, err)
	}

	if err := st.SaveCategory(ctx, "robotics"); err != nil {
		t.Fatalf("save category: %v", err)
	}
	if got, _ := resolveCategory(ctx, cmd, st, banks); got != "robotics" {
		t.Fatalf("expected stored category, got %q", got)
	}

	setFlags(t, cmd, "category", "Orbital")
	if got, _ := resolveCategory(ctx, cmd, st, banks); got != "orbital" {
		t.Fatalf("expected flag category, got %q", got)
	}

	cmd = newRootCmd()
	setFlags(t, cmd, "category", "astrology")
	if _, err := resolveCategory(ctx, cmd, st, banks); err == nil {
		t.Fatalf("expected unknown category error")
	}
}

func TestApplySetting(t *testing.T) {
	s := model.DefaultSettings()
	if err := applySetting(&s, "difficulty", "Expert"); err != nil || s.Difficulty != model.DifficultyExpert {
		t.Fatalf("difficulty not applied: %+v (%v)", s, err)
	}
	if err := applySetting(&s, "numbers", "true"); err != nil || !s.IncludeNumbers {
		t.Fatalf("numbers not applied: %+v (%v)", s, err)
	}
	if err := applySetting(&s, "sound", "off"); err == nil {
		t.Fatalf("expected boolean parse error")
	}
	if err := applySetting(&s, "theme", "neon"); err == nil || s.Theme != model.ThemeLight {
		t.Fatalf("invalid theme must be rejected without changing settings")
	}
	if err := applySetting(&s, "font", "mono"); err == nil {
		t.Fatalf("expected unknown setting error")
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template must parse: %v", err)
	}
	if cfg.Practice.Mode != nil || cfg.Server.Addr != nil || cfg.Log.Level != nil {
		t.Fatalf("template values must be commented out, got %+v", cfg)
	}
	for _, section := range []string{"[practice]", "[server]", "[log]"} {
		if !strings.Contains(defaultConfigTemplate(), section) {
			t.Fatalf("template missing %s", section)
		}
	}
}

func TestLoggingOptions(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	verbose = false
	t.Cleanup(func() { verbose = false })

	opts := loggingOptions(config.FileConfig{}, false)
	if opts.Level != defaultLogLevel || opts.Path != config.DefaultLogPath() {
		t.Fatalf("unexpected defaults %+v", opts)
	}

	fileCfg := config.FileConfig{Log: config.LogConfig{Level: strPtr("warn"), Path: strPtr("/tmp/x.log")}}
	opts = loggingOptions(fileCfg, true)
	if opts.Level != "warn" || opts.Path != "" {
		t.Fatalf("server logs go to stderr, got %+v", opts)
	}

	verbose = true
	if opts := loggingOptions(fileCfg, false); opts.Level != "debug" || opts.Path != "/tmp/x.log" {
		t.Fatalf("unexpected verbose options %+v", opts)
	}
}
