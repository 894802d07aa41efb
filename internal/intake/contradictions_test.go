package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContradictionsCleanDraft(t *testing.T) {
	d := Normalize(map[string]any{})
	warnings := DetectContradictions(d)
	require.NotNil(t, warnings)
	assert.Empty(t, warnings)
}

func TestDetectDarkColorsBrightMood(t *testing.T) {
	d := Normalize(map[string]any{
		"color": map[string]any{"brightness": "dark"},
		"mood":  map[string]any{"selectedMoods": []any{"bright_airy", "warm_cozy"}},
	})
	warnings := DetectContradictions(d)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "dark color scheme")
}

func TestDetectMinimalStyleRichDecor(t *testing.T) {
	d := Normalize(map[string]any{
		"basics": map[string]any{"roomsInScope": []any{"living_room", "bedroom"}},
		"style":  map[string]any{"selectedStyles": []any{"modern_minimal"}},
		"color":  map[string]any{"wallColor": "keep_white"},
		"roomPreferences": []any{
			map[string]any{"roomType": "bedroom", "decorDensity": "rich"},
		},
	})
	warnings := DetectContradictions(d)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "rich decor")
	assert.Contains(t, warnings[0], "bedroom")
}

func TestDetectPremiumTierTightBudget(t *testing.T) {
	d := Normalize(map[string]any{
		"basics":    map[string]any{"totalM2": 100.0},
		"furniture": map[string]any{"qualityTier": "premium"},
		"budget":    map[string]any{"minTotal": 10000.0, "maxTotal": 50000.0},
	})
	warnings := DetectContradictions(d)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Premium furniture")
	assert.Contains(t, warnings[0], "€90000")

	// Enough budget silences the rule.
	d.Budget.MaxTotal = 90000
	assert.Empty(t, DetectContradictions(d))
}

func TestDetectCalmMoodHighDrama(t *testing.T) {
	d := Normalize(map[string]any{
		"mood":     map[string]any{"selectedMoods": []any{"calm_minimal", "natural_organic"}},
		"lighting": map[string]any{"dramaLevel": 8.0},
	})
	warnings := DetectContradictions(d)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "calm & minimal")

	d.Lighting.DramaLevel = 7
	assert.Empty(t, DetectContradictions(d))
}

func TestDetectConflictingLightingScenarios(t *testing.T) {
	d := Normalize(map[string]any{
		"lighting": map[string]any{"scenarios": []any{"flat_ceiling_only", "layered_lighting"}},
	})
	warnings := DetectContradictions(d)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "layered lighting")
}

func TestDetectContradictionsFixedOrder(t *testing.T) {
	d := Normalize(map[string]any{
		"color":    map[string]any{"brightness": "dark"},
		"mood":     map[string]any{"selectedMoods": []any{"bright_airy", "calm_minimal"}},
		"lighting": map[string]any{"dramaLevel": 9.0, "scenarios": []any{"flat_ceiling_only", "layered_lighting"}},
	})
	warnings := DetectContradictions(d)
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "dark color scheme")
	assert.Contains(t, warnings[1], "calm & minimal")
	assert.Contains(t, warnings[2], "layered lighting")
}
