package wordlist

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "categories")
	reloaded := make(chan map[string][]string, 16)
	w, err := NewWatcher(dir, func(banks map[string][]string) {
		select {
		case reloaded <- banks:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "rovers.txt"), []byte("wheel\nchassis\n"), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}

	// A reload may observe the file before its contents land.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case banks := <-reloaded:
			if len(banks["rovers"]) == 2 {
				return
			}
		case <-timeout:
			t.Fatalf("watcher did not reload")
		}
	}
}

func TestNewWatcherCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	w, err := NewWatcher(dir, func(map[string][]string) {}, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer func() {
		_ = w.watcher.Close()
	}()
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory to be created: %v", err)
	}
}
