package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/verte-zerg/typeref/internal/model"
)

// Keys of the stored preference blobs.
const (
	SettingsKey = "typing-ref-settings"
	CategoryKey = "typing-ref-category"
	IdentityKey = "typing-ref-user"
)

// LoadSettings returns the stored settings over the defaults. Fields missing
// from the stored blob keep their default value.
func (s *Store) LoadSettings(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()
	raw, ok, err := s.GetValue(ctx, SettingsKey)
	if err != nil {
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}
	if !ok {
		return settings, nil
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return model.DefaultSettings(), fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// SaveSettings validates and stores settings.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return s.SetValue(ctx, SettingsKey, string(raw))
}

// LoadCategory returns the last selected category, or fallback.
func (s *Store) LoadCategory(ctx context.Context, fallback string) (string, error) {
	value, ok, err := s.GetValue(ctx, CategoryKey)
	if err != nil {
		return fallback, fmt.Errorf("failed to read category: %w", err)
	}
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return value, nil
}

// SaveCategory stores the selected category.
func (s *Store) SaveCategory(ctx context.Context, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("category must not be empty")
	}
	return s.SetValue(ctx, CategoryKey, category)
}

// LoadIdentity returns the locally signed-in user, if any.
func (s *Store) LoadIdentity(ctx context.Context) (string, bool, error) {
	value, ok, err := s.GetValue(ctx, IdentityKey)
	if err != nil || !ok || value == "" {
		return "", false, err
	}
	return value, true, nil
}

// SaveIdentity signs userID in locally.
func (s *Store) SaveIdentity(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id must not be empty")
	}
	return s.SetValue(ctx, IdentityKey, userID)
}

// ClearIdentity signs the local user out.
func (s *Store) ClearIdentity(ctx context.Context) error {
	return s.DeleteValue(ctx, IdentityKey)
}
