package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeEmptyPatchIsStable(t *testing.T) {
	current := Normalize(map[string]any{
		"id":     "draft-1",
		"basics": map[string]any{"propertyType": "house", "city": "Kaunas"},
		"style":  map[string]any{"selectedStyles": []any{"industrial"}},
	})
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	merged := Merge(current, map[string]any{}, now)

	assert.Equal(t, now, merged.UpdatedAt)
	merged.UpdatedAt = current.UpdatedAt
	assert.Equal(t, draftJSON(t, current), draftJSON(t, merged))
}

func TestMergeIgnoresProtectedKeys(t *testing.T) {
	current := Normalize(map[string]any{"id": "draft-2"})
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	merged := Merge(current, map[string]any{
		"id":                      "hijacked",
		"status":                  "submitted",
		"createdAt":               "2020-01-01T00:00:00Z",
		"updatedAt":               "2020-01-01T00:00:00Z",
		"contradictionsConfirmed": true,
	}, now)

	assert.Equal(t, "draft-2", merged.ID)
	assert.Equal(t, StatusDraft, merged.Status)
	assert.Equal(t, current.CreatedAt, merged.CreatedAt)
	assert.Equal(t, now, merged.UpdatedAt)
	assert.False(t, merged.ContradictionsConfirmed)
}

func TestMergeSectionFieldLevel(t *testing.T) {
	current := Normalize(map[string]any{
		"color": map[string]any{"palette": "earth_tones", "brightness": "light", "wallColor": "greige"},
	})

	merged := Merge(current, map[string]any{
		"color": map[string]any{"brightness": "dark"},
	}, time.Now())

	// Only the patched field changes; sibling fields survive.
	assert.Equal(t, "earth_tones", merged.Color.Palette)
	assert.Equal(t, BrightnessDark, merged.Color.Brightness)
	assert.Equal(t, WallGreige, merged.Color.WallColor)
}

func TestMergeQuizAnswersKeywise(t *testing.T) {
	current := Normalize(map[string]any{
		"style": map[string]any{"quizAnswers": map[string]any{"materials": "natural"}},
	})

	merged := Merge(current, map[string]any{
		"style": map[string]any{"quizAnswers": map[string]any{"clutter": "bare"}},
	}, time.Now())

	assert.Equal(t, map[string]string{"materials": "natural", "clutter": "bare"}, merged.Style.QuizAnswers)
}

func TestMergeAllocationKeywiseAndRescaled(t *testing.T) {
	current := Normalize(map[string]any{})
	require.Equal(t, 40, current.Budget.Allocation["furniture"])

	merged := Merge(current, map[string]any{
		"budget": map[string]any{"allocation": map[string]any{"furniture": 60.0}},
	}, time.Now())

	// Patched furniture joins the retained defaults (60+15+15+10+20 = 120)
	// and the whole set is rescaled back to 100.
	assert.Equal(t, 100, weightSum(merged.Budget.Allocation, allocationKeys))
	assert.Equal(t, 49, merged.Budget.Allocation["furniture"])
	assert.Equal(t, 13, merged.Budget.Allocation["lighting"])
}

func TestMergeTradeoffScoresFieldLevel(t *testing.T) {
	current := Normalize(map[string]any{
		"tradeoffScores": map[string]any{"aesthetics": 9.0, "speed": 2.0},
	})

	merged := Merge(current, map[string]any{
		"tradeoffScores": map[string]any{"speed": 8.0},
	}, time.Now())

	assert.Equal(t, 9, merged.TradeoffScores["aesthetics"])
	assert.Equal(t, 8, merged.TradeoffScores["speed"])
	assert.Equal(t, 100, weightSum(merged.Tradeoffs, tradeoffKeys))
}

func TestMergeRoomPreferencesReplaceAndResync(t *testing.T) {
	current := Normalize(map[string]any{
		"basics": map[string]any{"roomsInScope": []any{"living_room", "kitchen", "bedroom"}},
	})

	merged := Merge(current, map[string]any{
		"roomPreferences": []any{
			map[string]any{"roomType": "living_room", "decorDensity": "rich"},
		},
	}, time.Now())

	// The patched list replaces wholesale; re-normalization restores the
	// missing in-scope rooms with defaults.
	require.Len(t, merged.RoomPreferences, 3)
	byRoom := map[string]RoomPreference{}
	for _, pref := range merged.RoomPreferences {
		byRoom[pref.RoomType] = pref
	}
	assert.Equal(t, DensityRich, byRoom[RoomLiving].DecorDensity)
	assert.Equal(t, DensityBalanced, byRoom[RoomKitchen].DecorDensity)
	assert.Equal(t, DensityBalanced, byRoom[RoomBedroom].DecorDensity)
}

func TestMergePropertyTypeSwitchRebuildsRoomScope(t *testing.T) {
	current := Normalize(map[string]any{
		"basics": map[string]any{
			"propertyType": "apartment",
			"roomsInScope": []any{"living_room", "kitchen"},
		},
	})

	merged := Merge(current, map[string]any{
		"basics": map[string]any{"propertyType": "business_space"},
	}, time.Now())

	// No residential room survives the switch, so the canonical business
	// set takes over, with measurements and preferences tracking it.
	assert.Equal(t, []string{RoomOffice, RoomMeeting}, merged.Basics.RoomsInScope)
	assert.Equal(t, merged.Basics.RoomsInScope, measurementRooms(merged.Floorplan.RoomMeasurements))
	assert.Equal(t, merged.Basics.RoomsInScope, preferenceRooms(merged.RoomPreferences))
}

func TestMergeConfidenceFlagsKeywise(t *testing.T) {
	current := Normalize(map[string]any{
		"confidenceFlags": map[string]any{"basics.totalM2": "estimated"},
	})

	merged := Merge(current, map[string]any{
		"confidenceFlags": map[string]any{"floorplan": "from_photo"},
	}, time.Now())

	assert.Equal(t, map[string]string{
		"basics.totalM2": "estimated",
		"floorplan":      "from_photo",
	}, merged.ConfidenceFlags)
}

func TestMergeIsIdempotentOnSamePatch(t *testing.T) {
	current := Normalize(map[string]any{"id": "draft-3"})
	patch := map[string]any{
		"basics": map[string]any{"city": "Vilnius", "totalM2": 54.0},
		"mood":   map[string]any{"selectedMoods": []any{"calm_minimal", "refined_elegant"}},
	}
	now := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)

	once := Merge(current, patch, now)
	twice := Merge(once, patch, now)

	assert.Equal(t, draftJSON(t, once), draftJSON(t, twice))
}
