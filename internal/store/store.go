// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/typeref/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// HistoryLimit caps the records read back per user.
const HistoryLimit = 50

// Store wraps SQLite access for history and stored preferences.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			net_wpm INTEGER NOT NULL,
			raw_wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			elapsed_seconds INTEGER NOT NULL,
			consistency INTEGER NOT NULL,
			mode TEXT NOT NULL,
			category TEXT NOT NULL,
			timestamp_ms INTEGER NOT NULL,
			iso_date TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_user_ts ON history(user_id, timestamp_ms);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AppendRecord stores a committed result.
func (s *Store) AppendRecord(ctx context.Context, rec model.HistoryRecord) error {
	if rec.UserID == "" {
		return fmt.Errorf("record has no user")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, user_id, net_wpm, raw_wpm, accuracy, errors, elapsed_seconds, consistency, mode, category, timestamp_ms, iso_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.UserID,
		rec.NetWPM,
		rec.RawWPM,
		rec.Accuracy,
		rec.Errors,
		rec.ElapsedSeconds,
		rec.Consistency,
		string(rec.Mode),
		rec.Category,
		rec.Timestamp,
		rec.Date,
	)
	return err
}

// ListRecent returns up to limit of the user's newest records in
// chronological order.
func (s *Store) ListRecent(ctx context.Context, userID string, limit int) ([]model.HistoryRecord, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, net_wpm, raw_wpm, accuracy, errors, elapsed_seconds, consistency, mode, category, timestamp_ms, iso_date
		 FROM history
		 WHERE user_id = ?
		 ORDER BY timestamp_ms DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.HistoryRecord
	for rows.Next() {
		var rec model.HistoryRecord
		var mode string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.NetWPM, &rec.RawWPM, &rec.Accuracy, &rec.Errors,
			&rec.ElapsedSeconds, &rec.Consistency, &mode, &rec.Category, &rec.Timestamp, &rec.Date); err != nil {
			return nil, err
		}
		rec.Mode = model.Mode(mode)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// GetValue returns the stored value for key.
func (s *Store) GetValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetValue stores value under key, replacing any previous value.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// DeleteValue removes key.
func (s *Store) DeleteValue(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}
