package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ketotrack/internal/domain"
)

// DefaultTheme is the theme used until the user picks another.
const DefaultTheme = "Modern Minimal"

// Settings holds local-only display preferences.
type Settings struct {
	local domain.LocalStore
}

// NewSettings creates Settings backed by local.
func NewSettings(local domain.LocalStore) *Settings {
	return &Settings{local: local}
}

// Theme returns the selected theme name.
func (s *Settings) Theme(ctx context.Context) string {
	var theme string
	found, err := getJSON(ctx, s.local, keyTheme, &theme)
	if err != nil || !found || theme == "" {
		return DefaultTheme
	}
	return theme
}

// SaveTheme stores the selected theme name.
func (s *Settings) SaveTheme(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("theme name is required")
	}
	return setJSON(ctx, s.local, keyTheme, name)
}

// CustomThemeColors returns the stored color overrides, or nil.
func (s *Settings) CustomThemeColors(ctx context.Context) json.RawMessage {
	var colors json.RawMessage
	found, err := getJSON(ctx, s.local, keyThemeColors, &colors)
	if err != nil || !found {
		return nil
	}
	return colors
}

// SaveCustomThemeColors stores color overrides. colors must be a JSON object.
func (s *Settings) SaveCustomThemeColors(ctx context.Context, colors json.RawMessage) error {
	var obj map[string]any
	if err := json.Unmarshal(colors, &obj); err != nil {
		return fmt.Errorf("custom colors must be a JSON object: %w", err)
	}
	if obj == nil {
		return errors.New("custom colors must be a JSON object")
	}
	return setJSON(ctx, s.local, keyThemeColors, colors)
}
