// Package wordlist loads custom category word banks from files.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const bankExt = ".txt"

// LoadWords reads one word per line from the provided file path, keeping the
// words accepted by keep.
func LoadWords(path string, keep FilterFunc) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if keep != nil && !keep(line) {
			continue
		}
		words = append(words, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// LoadDir loads every <category>.txt file in dir. A missing directory yields
// no banks. A file that cannot be loaded, or holds no usable words, is
// skipped with a warning.
func LoadDir(dir string, logger *zap.Logger) (map[string][]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("failed to read category directory: %w", err)
	}
	banks := make(map[string][]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), bankExt) {
			continue
		}
		name := strings.ToLower(strings.TrimSuffix(entry.Name(), bankExt))
		path := filepath.Join(dir, entry.Name())
		words, err := LoadWords(path, SingleToken)
		if err != nil {
			logger.Warn("skipping category", zap.String("category", name), zap.String("path", path), zap.Error(err))
			continue
		}
		banks[name] = words
	}
	return banks, nil
}
