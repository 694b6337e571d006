package wordlist

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads the category directory whenever a bank file changes.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	onReload func(map[string][]string)
	logger   *zap.Logger
	debounce time.Duration
}

// NewWatcher watches dir and calls onReload with the freshly loaded banks
// after each burst of changes. The directory is created if missing.
func NewWatcher(dir string, onReload func(map[string][]string), logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return &Watcher{
		dir:      dir,
		watcher:  fw,
		onReload: onReload,
		logger:   logger,
		debounce: defaultDebounce,
	}, nil
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn("failed to close category watcher", zap.Error(err))
		}
	}()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("category file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			pending = time.After(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("category watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	banks, err := LoadDir(w.dir, w.logger)
	if err != nil {
		w.logger.Warn("failed to reload categories", zap.Error(err))
		return
	}
	w.logger.Info("categories reloaded", zap.Int("custom", len(banks)))
	w.onReload(banks)
}

func relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, bankExt) {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
