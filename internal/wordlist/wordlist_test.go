package wordlist

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	content := "# custom bank\nKernel\n\nscheduler\ntwo words\n"
	if err := os.WriteFile(filepath.Join(dir, "Systems.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	banks, err := LoadDir(dir, nil)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(banks) != 1 {
		t.Fatalf("expected 1 bank, got %d", len(banks))
	}
	words := banks["systems"]
	if len(words) != 2 || words[0] != "kernel" || words[1] != "scheduler" {
		t.Fatalf("unexpected words %v", words)
	}
}

func TestLoadDirMissing(t *testing.T) {
	banks, err := LoadDir(filepath.Join(t.TempDir(), "missing"), nil)
	if err != nil {
		t.Fatalf("expected no error for missing dir, got %v", err)
	}
	if len(banks) != 0 {
		t.Fatalf("expected no banks, got %v", banks)
	}
}

func TestLoadDirSkipsEmptyBank(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty.txt"), []byte("# nothing\n\n"), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("servo\nactuator\n"), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	core, logs := observer.New(zapcore.WarnLevel)

	banks, err := LoadDir(dir, zap.New(core))
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if _, ok := banks["empty"]; ok || len(banks) != 1 {
		t.Fatalf("expected only the robots bank, got %v", banks)
	}
	if len(banks["robots"]) != 2 {
		t.Fatalf("unexpected words %v", banks["robots"])
	}
	warned := logs.FilterMessage("skipping category").All()
	if len(warned) != 1 || warned[0].ContextMap()["category"] != "empty" {
		t.Fatalf("expected one warning for the empty bank, got %v", logs.All())
	}
}
