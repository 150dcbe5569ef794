package app_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ketotrack/internal/adapter/memory"
	"ketotrack/internal/app"
)

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := app.NewSettings(memory.NewKV(0))

	assert.Equal(t, app.DefaultTheme, s.Theme(ctx))
	require.NoError(t, s.SaveTheme(ctx, "Ocean Breeze"))
	assert.Equal(t, "Ocean Breeze", s.Theme(ctx))
	assert.Error(t, s.SaveTheme(ctx, ""))

	assert.Nil(t, s.CustomThemeColors(ctx))
	require.NoError(t, s.SaveCustomThemeColors(ctx, json.RawMessage(`{"primary": "#123456"}`)))
	assert.JSONEq(t, `{"primary":"#123456"}`, string(s.CustomThemeColors(ctx)))
	assert.Error(t, s.SaveCustomThemeColors(ctx, json.RawMessage(`["not", "an", "object"]`)))
}
