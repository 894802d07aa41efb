package intake

import "fmt"

// contradictionRules run in fixed order; each returns a human-readable
// warning when its combination of otherwise-valid answers conflicts.
// Warnings are advisory: submission proceeds once the client acknowledges
// them, they are never auto-resolved.
var contradictionRules = []func(Draft) (string, bool){
	darkColorsBrightMood,
	minimalStyleRichDecor,
	premiumTierTightBudget,
	calmMoodHighDrama,
	conflictingLightingScenarios,
}

// DetectContradictions inspects a validated draft for known-conflicting
// answer combinations. The returned list is empty when nothing conflicts;
// it never fails.
func DetectContradictions(d Draft) []string {
	warnings := []string{}
	for _, rule := range contradictionRules {
		if warning, ok := rule(d); ok {
			warnings = append(warnings, warning)
		}
	}
	return warnings
}

func darkColorsBrightMood(d Draft) (string, bool) {
	if d.Color.Brightness != BrightnessDark || !hasEntry(d.Mood.SelectedMoods, MoodBrightAiry) {
		return "", false
	}
	return "You chose a dark color scheme together with a bright & airy mood; dark walls will work against the airy feel.", true
}

func minimalStyleRichDecor(d Draft) (string, bool) {
	if !hasEntry(d.Style.SelectedStyles, StyleModernMinimal) {
		return "", false
	}
	for _, pref := range d.RoomPreferences {
		if pref.DecorDensity == DensityRich {
			return fmt.Sprintf("Modern minimal style conflicts with the rich decor density chosen for the %s.", roomLabel(pref.RoomType)), true
		}
	}
	return "", false
}

func premiumTierTightBudget(d Draft) (string, bool) {
	if d.Furniture.QualityTier != TierPremium {
		return "", false
	}
	required := d.Basics.TotalM2 * premiumCostPerM2
	if d.Budget.MaxTotal >= required {
		return "", false
	}
	return fmt.Sprintf("Premium furniture for %.0f m² typically needs a budget around €%.0f, above your €%.0f maximum.",
		d.Basics.TotalM2, required, d.Budget.MaxTotal), true
}

func calmMoodHighDrama(d Draft) (string, bool) {
	if !hasEntry(d.Mood.SelectedMoods, MoodCalmMinimal) || d.Lighting.DramaLevel < highDramaThreshold {
		return "", false
	}
	return "A calm & minimal mood sits oddly with very dramatic lighting; consider dialing the drama level down.", true
}

func conflictingLightingScenarios(d Draft) (string, bool) {
	if !hasEntry(d.Lighting.Scenarios, ScenarioFlatCeiling) || !hasEntry(d.Lighting.Scenarios, ScenarioLayered) {
		return "", false
	}
	return "Flat-ceiling-only and layered lighting cannot both apply; layered lighting needs more than ceiling fixtures.", true
}

func hasEntry(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// roomLabel renders a room type ID for user-facing text.
func roomLabel(roomType string) string {
	labels := map[string]string{
		RoomLiving:      "living room",
		RoomBedroom:     "bedroom",
		RoomKids:        "kids room",
		RoomKitchen:     "kitchen",
		RoomDining:      "dining room",
		RoomBathroom:    "bathroom",
		RoomHallway:     "hallway",
		RoomHomeOffice:  "home office",
		RoomStudio:      "studio room",
		RoomOffice:      "office",
		RoomMeeting:     "meeting room",
		RoomReception:   "reception",
		RoomBreak:       "break room",
		RoomRetailFloor: "retail floor",
		RoomFitting:     "fitting area",
		RoomStorage:     "storage room",
		RoomStaff:       "staff room",
	}
	if label, ok := labels[roomType]; ok {
		return label
	}
	return roomType
}
