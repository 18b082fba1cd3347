/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wikilinks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsMergeKnownFields(t *testing.T) {
	base := DefaultSettings()

	merged, err := base.Merge(map[string]any{
		"pointsForCorrect": float64(4),
		"roundTimeLimit":   "120",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, merged.PointsForCorrect)
	assert.Equal(t, 120, merged.RoundTimeLimit)
	assert.Equal(t, base.MaxPlayers, merged.MaxPlayers)
	assert.Equal(t, base.PointsForFooling, merged.PointsForFooling)
	assert.Equal(t, 1, base.PointsForCorrect, "receiver is untouched")
}

func TestSettingsMergeKeepsExtraFields(t *testing.T) {
	first, err := DefaultSettings().Merge(map[string]any{"theme": "dark"})
	require.NoError(t, err)

	second, err := first.Merge(map[string]any{"language": "de", "theme": "light"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"theme": "dark"}, first.Extra)
	assert.Equal(t, map[string]any{"theme": "light", "language": "de"}, second.Extra)
}

func TestSettingsMergeRejectsBadValues(t *testing.T) {
	base := DefaultSettings()

	merged, err := base.Merge(map[string]any{"maxPlayers": "lots"})
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, base, merged)
}

func TestSettingsMergeRejectsFractions(t *testing.T) {
	base := DefaultSettings()

	merged, err := base.Merge(map[string]any{"pointsForCorrect": 1.7})
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Equal(t, base, merged)

	merged, err = base.Merge(map[string]any{"pointsForCorrect": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 3, merged.PointsForCorrect)
}

func TestSettingsMergeMatchesKeysExactly(t *testing.T) {
	merged, err := DefaultSettings().Merge(map[string]any{"maxplayers": 3})
	require.NoError(t, err)

	assert.Equal(t, DefaultSettings().MaxPlayers, merged.MaxPlayers)
	assert.Equal(t, map[string]any{"maxplayers": 3}, merged.Extra)
}

func TestUpdateSettingsFailureLeavesSettings(t *testing.T) {
	e := newTestEngine(t, 1)

	_, err := e.UpdateSettings(map[string]any{"pointsForFooling": map[string]any{"x": 1}})
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Equal(t, DefaultSettings(), e.Settings())
}

func TestSettingsJSONFlattensExtra(t *testing.T) {
	s, err := DefaultSettings().Merge(map[string]any{"theme": "dark", "maxPlayers": 6})
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"maxPlayers": 6,
		"roundTimeLimit": 300,
		"pointsForCorrect": 1,
		"pointsForFooling": 2,
		"theme": "dark"
	}`, string(data))
}
