package intake

import (
	"fmt"
	"strings"
)

// ValidationError carries every violated constraint, not just the first, so
// a caller can surface or repair all of them at once.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "intake validation failed"
	}
	return fmt.Sprintf("intake validation failed: %s", strings.Join(e.Violations, "; "))
}

// Validate is the strict gate before a draft may transition to submitted.
// Unlike Normalize it is not total: a draft that has not been normalized, or
// whose mandatory consents are missing, fails with the full violation list.
// Consents are the one place the always-repair philosophy is deliberately
// overridden: absence is a failure, never a default-fill opportunity.
func Validate(d Draft) error {
	var violations []string
	add := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	if !propertyTypes.Contains(d.Basics.PropertyType) {
		add("basics.propertyType %q is not a known property type", d.Basics.PropertyType)
	}
	if d.Basics.TotalM2 <= 0 {
		add("basics.totalM2 must be positive, got %v", d.Basics.TotalM2)
	}
	if len(d.Basics.RoomsInScope) == 0 {
		add("basics.roomsInScope must not be empty")
	}
	legal := NewEnum("", legalRooms(d.Basics.PropertyType)...)
	seenRooms := make(map[string]bool, len(d.Basics.RoomsInScope))
	for _, room := range d.Basics.RoomsInScope {
		if !legal.Contains(room) {
			add("basics.roomsInScope contains %q, which is not legal for %s", room, d.Basics.PropertyType)
		}
		if seenRooms[room] {
			add("basics.roomsInScope contains %q more than once", room)
		}
		seenRooms[room] = true
	}
	for room, qty := range d.Basics.RoomQuantities {
		if qty < 1 || qty > 10 {
			add("basics.roomQuantities[%s] must be between 1 and 10, got %d", room, qty)
		}
	}

	checkRoomCorrespondence("floorplan.roomMeasurements", measurementRooms(d.Floorplan.RoomMeasurements), d.Basics.RoomsInScope, add)
	checkRoomCorrespondence("roomPreferences", preferenceRooms(d.RoomPreferences), d.Basics.RoomsInScope, add)

	for _, m := range d.Floorplan.RoomMeasurements {
		if m.WidthMM <= 0 || m.LengthMM <= 0 || m.CeilingMM <= 0 {
			add("floorplan.roomMeasurements[%s] has a non-positive dimension", m.RoomType)
		}
		if !confidenceOptions.Contains(m.Confidence) {
			add("floorplan.roomMeasurements[%s].confidence %q is not a known tier", m.RoomType, m.Confidence)
		}
	}

	if sum := weightSum(d.Tradeoffs, tradeoffKeys); sum != 100 {
		add("tradeoffs must sum to exactly 100, got %d", sum)
	}
	if sum := weightSum(d.Budget.Allocation, allocationKeys); sum != 100 {
		add("budget.allocation must sum to exactly 100, got %d", sum)
	}
	for _, key := range tradeoffKeys {
		if score, ok := d.TradeoffScores[key]; !ok || score < 1 || score > 10 {
			add("tradeoffScores[%s] must be a rating between 1 and 10", key)
		}
	}

	if n := len(d.Style.SelectedStyles); n < 1 || n > 2 {
		add("style.selectedStyles must have 1 to 2 entries, got %d", n)
	}
	for _, style := range d.Style.SelectedStyles {
		if !styleOptions.Contains(style) {
			add("style.selectedStyles contains unknown style %q", style)
		}
	}
	if n := len(d.Mood.SelectedMoods); n < 2 || n > 3 {
		add("mood.selectedMoods must have 2 to 3 entries, got %d", n)
	}
	for _, mood := range d.Mood.SelectedMoods {
		if !moodOptions.Contains(mood) {
			add("mood.selectedMoods contains unknown mood %q", mood)
		}
	}

	if !paletteOptions.Contains(d.Color.Palette) {
		add("color.palette %q is not a known palette", d.Color.Palette)
	}
	if !brightnessOptions.Contains(d.Color.Brightness) {
		add("color.brightness %q is not a known brightness", d.Color.Brightness)
	}
	if d.Color.WallColor == WallRecommend || !wallColorOptions.Contains(d.Color.WallColor) {
		add("color.wallColor %q must be a resolved wall color", d.Color.WallColor)
	}

	if !dayNightOptions.Contains(d.Lighting.DayNightPriority) {
		add("lighting.dayNightPriority %q is not a known priority", d.Lighting.DayNightPriority)
	}
	if d.Lighting.DramaLevel < 1 || d.Lighting.DramaLevel > 10 {
		add("lighting.dramaLevel must be between 1 and 10, got %d", d.Lighting.DramaLevel)
	}
	for _, scenario := range d.Lighting.Scenarios {
		if !scenarioOptions.Contains(scenario) {
			add("lighting.scenarios contains unknown scenario %q", scenario)
		}
	}

	if !furnitureTierOptions.Contains(d.Furniture.QualityTier) {
		add("furniture.qualityTier %q is not a known tier", d.Furniture.QualityTier)
	}

	if d.Budget.MinTotal <= 0 {
		add("budget.minTotal must be positive, got %v", d.Budget.MinTotal)
	}
	if d.Budget.MaxTotal < d.Budget.MinTotal {
		add("budget.maxTotal %v must not be below budget.minTotal %v", d.Budget.MaxTotal, d.Budget.MinTotal)
	}

	for _, pref := range d.RoomPreferences {
		if !densityOptions.Contains(pref.DecorDensity) {
			add("roomPreferences[%s].decorDensity %q is not a known density", pref.RoomType, pref.DecorDensity)
		}
		if pref.Living != nil && pref.RoomType != RoomLiving {
			add("roomPreferences[%s] carries living-room fields", pref.RoomType)
		}
		if pref.Kitchen != nil && pref.RoomType != RoomKitchen {
			add("roomPreferences[%s] carries kitchen fields", pref.RoomType)
		}
		if pref.Bedroom != nil && pref.RoomType != RoomBedroom {
			add("roomPreferences[%s] carries bedroom fields", pref.RoomType)
		}
	}

	if !d.Consents.ConceptOnly {
		add("consents.conceptOnly must be explicitly acknowledged")
	}
	if !d.Consents.RevisionPolicy {
		add("consents.revisionPolicy must be explicitly acknowledged")
	}
	if !d.Consents.Privacy {
		add("consents.privacy must be explicitly acknowledged")
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func weightSum(weights map[string]int, keys []string) int {
	sum := 0
	for _, key := range keys {
		sum += weights[key]
	}
	return sum
}

func measurementRooms(measurements []RoomMeasurement) []string {
	out := make([]string, len(measurements))
	for i, m := range measurements {
		out[i] = m.RoomType
	}
	return out
}

func preferenceRooms(prefs []RoomPreference) []string {
	out := make([]string, len(prefs))
	for i, p := range prefs {
		out[i] = p.RoomType
	}
	return out
}

// checkRoomCorrespondence verifies a per-room list covers the room scope
// exactly: no duplicates, no omissions, no extras.
func checkRoomCorrespondence(field string, rooms, scope []string, add func(string, ...any)) {
	counts := make(map[string]int, len(rooms))
	for _, room := range rooms {
		counts[room]++
	}
	for _, room := range scope {
		switch counts[room] {
		case 0:
			add("%s is missing an entry for %s", field, room)
		case 1:
			// exact match
		default:
			add("%s has %d entries for %s", field, counts[room], room)
		}
		delete(counts, room)
	}
	for room := range counts {
		add("%s has an entry for out-of-scope room %s", field, room)
	}
}
