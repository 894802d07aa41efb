package intake

import (
	"time"
)

// Normalize repairs an arbitrary, possibly incomplete or wrong-typed
// document into a fully valid Draft. It is total: it never fails, whatever
// the input shape. Autosave depends on that: a half-finished wizard step
// must round-trip without ever surfacing a validation error.
//
// Normalize is idempotent: feeding its output back in returns an equal
// document.
func Normalize(input map[string]any) Draft {
	if input == nil {
		input = map[string]any{}
	}
	now := time.Now().UTC()

	var d Draft
	d.ID = cleanString(input["id"], 64)
	d.Status = statusOptions.Coerce(input["status"])

	d.Basics = normalizeBasics(asMap(input["basics"]))
	rooms := d.Basics.RoomsInScope

	d.Floorplan = normalizeFloorplan(asMap(input["floorplan"]), rooms)
	d.Lifestyle = normalizeLifestyle(asMap(input["lifestyle"]))

	d.TradeoffScores = normalizeTradeoffScores(asMap(input["tradeoffScores"]))
	d.Tradeoffs = tradeoffsFromScores(d.TradeoffScores)

	quiz := normalizeQuizAnswers(asMap(input["style"]))
	inferred := inferFromQuiz(quiz)

	d.Style = StyleSection{
		SelectedStyles: styleOptions.CoerceSet(sectionField(input, "style", "selectedStyles"), 1, 2, inferred.Styles, defaultStyles),
		QuizAnswers:    quiz,
	}
	d.Mood = MoodSection{
		SelectedMoods: moodOptions.CoerceSet(sectionField(input, "mood", "selectedMoods"), 2, 3, inferred.Moods, defaultMoods),
	}

	d.Color = normalizeColor(asMap(input["color"]), d.Style.SelectedStyles)
	d.Lighting = normalizeLighting(asMap(input["lighting"]))
	d.Furniture = normalizeFurniture(asMap(input["furniture"]), inferred.Tier)
	d.Budget = normalizeBudget(asMap(input["budget"]))

	d.RoomPreferences = syncRoomPreferences(asList(input["roomPreferences"]), rooms)
	d.Inspirations = normalizeInspirations(asMap(input["inspirations"]))
	d.Assets = normalizeAssets(asList(input["assets"]))
	d.Consents = Consents{
		ConceptOnly:    asBool(sectionField(input, "consents", "conceptOnly")),
		RevisionPolicy: asBool(sectionField(input, "consents", "revisionPolicy")),
		Privacy:        asBool(sectionField(input, "consents", "privacy")),
	}

	d.ConfidenceFlags = normalizeConfidenceFlags(asMap(input["confidenceFlags"]))
	d.ContradictionsConfirmed = asBool(input["contradictionsConfirmed"])
	d.CreatedAt = asTime(input["createdAt"], now)
	d.UpdatedAt = asTime(input["updatedAt"], now)
	return d
}

func sectionField(input map[string]any, section, field string) any {
	m := asMap(input[section])
	if m == nil {
		return nil
	}
	return m[field]
}

func normalizeBasics(m map[string]any) Basics {
	propertyType := propertyTypes.Coerce(m["propertyType"])

	// Filter the caller's selection to the legal list for this property
	// type; an empty survivor set is replaced by the canonical default set,
	// not padded one room at a time.
	legal := NewEnum("", legalRooms(propertyType)...)
	rooms := legal.CoerceSet(m["roomsInScope"], 0, len(legalRooms(propertyType)))
	if len(rooms) == 0 {
		rooms = append([]string{}, defaultRooms(propertyType)...)
	}

	area, ok := asNumber(m["totalM2"])
	if !ok || area <= 0 {
		area = defaultFloorAreaByProperty[propertyType]
	}
	if area > 10000 {
		area = 10000
	}

	quantities := make(map[string]int, len(rooms))
	raw := asMap(m["roomQuantities"])
	for _, room := range rooms {
		quantities[room] = clampInt(raw[room], 1, 10, 1)
	}

	return Basics{
		PropertyType:   propertyType,
		City:           cleanString(m["city"], 80),
		TotalM2:        area,
		RoomsInScope:   rooms,
		RoomQuantities: quantities,
	}
}

func normalizeFloorplan(m map[string]any, rooms []string) Floorplan {
	return Floorplan{
		HasPlan:          asBool(m["hasPlan"]),
		PlanAssetIDs:     stringSet(m["planAssetIds"], 10),
		RoomMeasurements: syncRoomMeasurements(asList(m["roomMeasurements"]), rooms),
	}
}

// syncRoomMeasurements rebuilds the measurement list to match the room
// scope exactly: existing entries are repaired and kept for rooms still in
// scope, template defaults are synthesized for new rooms, and entries for
// out-of-scope rooms are dropped.
func syncRoomMeasurements(items []any, rooms []string) []RoomMeasurement {
	byRoom := make(map[string]map[string]any, len(items))
	for _, item := range items {
		entry := asMap(item)
		if entry == nil {
			continue
		}
		roomType, ok := asString(entry["roomType"])
		if !ok || !allRoomTypes.Contains(roomType) {
			continue
		}
		if _, exists := byRoom[roomType]; !exists {
			byRoom[roomType] = entry
		}
	}

	out := make([]RoomMeasurement, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, normalizeMeasurement(room, byRoom[room]))
	}
	return out
}

func normalizeMeasurement(roomType string, m map[string]any) RoomMeasurement {
	tpl := templateFor(roomType)
	if m == nil {
		m = map[string]any{}
	}

	width, widthOK := positiveDim(m["widthMm"], tpl.WidthMM)
	length, lengthOK := positiveDim(m["lengthMm"], tpl.LengthMM)
	ceiling, ceilingOK := positiveDim(m["ceilingMm"], tpl.CeilingMM)

	confidence := confidenceOptions.Coerce(m["confidence"])
	usedDefaults := asBool(m["usedDefaults"])
	if !widthOK || !lengthOK || !ceilingOK {
		// Any defaulted core dimension overrides the caller's claim.
		confidence = ConfidenceLow
		usedDefaults = true
	}

	openings := normalizeOpenings(asList(m["openings"]), tpl)
	if _, present := m["openings"]; !present {
		openings = defaultOpenings(tpl)
	}

	return RoomMeasurement{
		RoomType:     roomType,
		WidthMM:      width,
		LengthMM:     length,
		CeilingMM:    ceiling,
		Confidence:   confidence,
		UsedDefaults: usedDefaults,
		Openings:     openings,
	}
}

func normalizeOpenings(items []any, tpl RoomTemplate) []Opening {
	out := make([]Opening, 0, len(items))
	for _, item := range items {
		if len(out) >= 12 {
			break
		}
		entry := asMap(item)
		if entry == nil {
			continue
		}
		kind := openingKindOptions.Coerce(entry["kind"])
		fallbackWidth := tpl.DoorMM
		if kind == OpeningWindow {
			fallbackWidth = tpl.WindowMM
		}
		width, _ := positiveDim(entry["widthMm"], fallbackWidth)
		opening := Opening{
			Kind:    kind,
			Wall:    wallOptions.Coerce(entry["wall"]),
			WidthMM: width,
		}
		if kind == OpeningWindow {
			opening.SillMM, _ = positiveDim(entry["sillMm"], tpl.SillMM)
		}
		out = append(out, opening)
	}
	return out
}

// defaultOpenings synthesizes one door and, where the template has one, one
// window for rooms with no opening data at all.
func defaultOpenings(tpl RoomTemplate) []Opening {
	out := []Opening{{Kind: OpeningDoor, Wall: "north", WidthMM: tpl.DoorMM}}
	if tpl.WindowMM > 0 {
		out = append(out, Opening{Kind: OpeningWindow, Wall: "south", WidthMM: tpl.WindowMM, SillMM: tpl.SillMM})
	}
	return out
}

func normalizeLifestyle(m map[string]any) Lifestyle {
	storage := clampScore(m["storageNeedScore"], 5)
	maintenance := clampScore(m["maintenanceScore"], 5)
	return Lifestyle{
		Adults:           clampInt(m["adults"], 1, 12, 2),
		Children:         clampInt(m["children"], 0, 10, 0),
		Pets:             asBool(m["pets"]),
		StorageNeedScore: storage,
		StorageNeedTier:  scoreTier(storage),
		MaintenanceScore: maintenance,
		MaintenanceTier:  scoreTier(maintenance),
	}
}

func normalizeTradeoffScores(m map[string]any) map[string]int {
	out := make(map[string]int, len(tradeoffKeys))
	for _, key := range tradeoffKeys {
		out[key] = clampScore(m[key], 5)
	}
	return out
}

// tradeoffsFromScores rescales the raw 1-10 ratings so they sum to exactly
// 100. The weights are always derived from the scores, never taken from the
// patch directly.
func tradeoffsFromScores(scores map[string]int) map[string]int {
	raw := make(map[string]float64, len(scores))
	for key, score := range scores {
		raw[key] = float64(score)
	}
	return normalizeWeights(raw, tradeoffKeys)
}

func normalizeQuizAnswers(styleSection map[string]any) map[string]string {
	answers := asMap(styleSection["quizAnswers"])
	out := map[string]string{}
	for _, question := range quizQuestionOrder {
		answer := quizAnswerOptions[question].Coerce(answers[question])
		if answer != "" {
			out[question] = answer
		}
	}
	return out
}

// inferFromQuiz collects candidate styles, moods and a furniture tier from
// the quiz rule table, deduplicated in question order. Candidates act only
// as fallback defaults; an explicit selection always wins.
func inferFromQuiz(answers map[string]string) quizRule {
	var out quizRule
	seenStyle := make(map[string]bool)
	seenMood := make(map[string]bool)
	for _, question := range quizQuestionOrder {
		answer, ok := answers[question]
		if !ok {
			continue
		}
		rule, ok := quizRules[question+"="+answer]
		if !ok {
			continue
		}
		for _, style := range rule.Styles {
			if !seenStyle[style] {
				seenStyle[style] = true
				out.Styles = append(out.Styles, style)
			}
		}
		for _, mood := range rule.Moods {
			if !seenMood[mood] {
				seenMood[mood] = true
				out.Moods = append(out.Moods, mood)
			}
		}
		if out.Tier == "" {
			out.Tier = rule.Tier
		}
	}
	return out
}

func normalizeColor(m map[string]any, selectedStyles []string) ColorSection {
	wall := wallColorOptions.Coerce(m["wallColor"])
	if wall == WallRecommend {
		wall = recommendWallColor(selectedStyles)
	}
	return ColorSection{
		Palette:    paletteOptions.Coerce(m["palette"]),
		Brightness: brightnessOptions.Coerce(m["brightness"]),
		WallColor:  wall,
	}
}

// recommendWallColor resolves the recommend-for-me preference: dark elegant
// gets an accent wall, minimalist styles keep white, everything else greige.
func recommendWallColor(styles []string) string {
	for _, style := range styles {
		if style == StyleDarkElegant {
			return WallAccent
		}
	}
	for _, style := range styles {
		if minimalistStyles[style] {
			return WallKeepWhite
		}
	}
	return WallGreige
}

func normalizeLighting(m map[string]any) LightingSection {
	dayNight := dayNightOptions.Coerce(m["dayNightPriority"])
	drama := clampScore(m["dramaLevel"], 3)
	preset := presetByDayNight[dayNight]
	if drama >= highDramaThreshold {
		preset = PresetEveningCozy
	}
	return LightingSection{
		DayNightPriority: dayNight,
		DramaLevel:       drama,
		Preset:           preset,
		Scenarios:        scenarioOptions.CoerceSet(m["scenarios"], 0, 3),
	}
}

func normalizeFurniture(m map[string]any, suggestedTier string) FurnitureSection {
	fallback := suggestedTier
	if fallback == "" {
		fallback = TierStandard
	}
	// The fallback is dynamic (quiz-suggested), so the shared tier enum is
	// rebound to it; coercion still trims and lowercases like every enum.
	tiers := NewEnum(fallback, furnitureTierOptions.Values()...)
	return FurnitureSection{
		QualityTier: tiers.Coerce(m["qualityTier"]),
		CustomBuilt: asBool(m["customBuilt"]),
	}
}

func normalizeBudget(m map[string]any) BudgetSection {
	minTotal, ok := asNumber(m["minTotal"])
	if !ok || minTotal <= 0 {
		minTotal = defaultBudgetMin
	}
	if minTotal > maxBudgetTotal {
		minTotal = maxBudgetTotal
	}
	maxTotal, ok := asNumber(m["maxTotal"])
	if !ok || maxTotal <= 0 {
		maxTotal = defaultBudgetMax
	}
	if maxTotal > maxBudgetTotal {
		maxTotal = maxBudgetTotal
	}
	if maxTotal < minTotal {
		maxTotal = minTotal
	}

	raw := make(map[string]float64, len(allocationKeys))
	alloc := asMap(m["allocation"])
	for _, key := range allocationKeys {
		if v, ok := asNumber(alloc[key]); ok {
			raw[key] = v
		} else {
			raw[key] = defaultAllocation[key]
		}
	}

	return BudgetSection{
		MinTotal:   minTotal,
		MaxTotal:   maxTotal,
		Allocation: normalizeWeights(raw, allocationKeys),
	}
}

// syncRoomPreferences mirrors syncRoomMeasurements for the preference list.
func syncRoomPreferences(items []any, rooms []string) []RoomPreference {
	byRoom := make(map[string]map[string]any, len(items))
	for _, item := range items {
		entry := asMap(item)
		if entry == nil {
			continue
		}
		roomType, ok := asString(entry["roomType"])
		if !ok || !allRoomTypes.Contains(roomType) {
			continue
		}
		if _, exists := byRoom[roomType]; !exists {
			byRoom[roomType] = entry
		}
	}

	out := make([]RoomPreference, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, normalizeRoomPreference(room, byRoom[room]))
	}
	return out
}

func normalizeRoomPreference(roomType string, m map[string]any) RoomPreference {
	if m == nil {
		m = map[string]any{}
	}
	pref := RoomPreference{
		RoomType:        roomType,
		StoragePriority: clampScore(m["storagePriority"], 5),
		ActivityScore:   clampScore(m["activityScore"], 5),
		LightScore:      clampScore(m["lightScore"], 5),
		ComfortScore:    clampScore(m["comfortScore"], 5),
		DecorDensity:    densityOptions.Coerce(m["decorDensity"]),
	}

	// Only the variant matching the room type survives; the others are
	// discarded even if the caller set them.
	switch roomType {
	case RoomLiving:
		living := asMap(m["living"])
		pref.Living = &LivingRoomPrefs{
			SeatingType: seatingOptions.Coerce(living["seatingType"]),
			TVWall:      asBool(living["tvWall"]),
			Rug:         asBool(living["rug"]),
		}
	case RoomKitchen:
		kitchen := asMap(m["kitchen"])
		pref.Kitchen = &KitchenPrefs{
			Layout:      kitchenLayoutOptions.Coerce(kitchen["layout"]),
			Island:      asBool(kitchen["island"]),
			HandleStyle: handleOptions.Coerce(kitchen["handleStyle"]),
		}
	case RoomBedroom:
		bedroom := asMap(m["bedroom"])
		pref.Bedroom = &BedroomPrefs{
			BedSize:      bedSizeOptions.Coerce(bedroom["bedSize"]),
			WardrobeType: wardrobeOptions.Coerce(bedroom["wardrobeType"]),
		}
	}
	return pref
}

func normalizeInspirations(m map[string]any) Inspirations {
	tags := map[string][]string{}
	for assetID, raw := range asMap(m["tagsByAsset"]) {
		if len(tags) >= 20 {
			break
		}
		list := stringSet(raw, 10)
		if len(list) > 0 {
			tags[assetID] = list
		}
	}
	return Inspirations{
		AssetIDs:      stringSet(m["assetIds"], 20),
		AvoidAssetIDs: stringSet(m["avoidAssetIds"], 20),
		TagsByAsset:   tags,
	}
}

func normalizeAssets(items []any) []Asset {
	out := make([]Asset, 0, len(items))
	for _, item := range items {
		if len(out) >= 40 {
			break
		}
		entry := asMap(item)
		if entry == nil {
			continue
		}
		id := cleanString(entry["id"], 64)
		if id == "" {
			continue
		}
		asset := Asset{
			ID:           id,
			Kind:         assetKindOptions.Coerce(entry["kind"]),
			URL:          cleanString(entry["url"], 512),
			ThumbnailURL: cleanString(entry["thumbnailUrl"], 512),
			MimeType:     cleanString(entry["mimeType"], 100),
		}
		if roomType, ok := asString(entry["roomType"]); ok && allRoomTypes.Contains(roomType) {
			asset.RoomType = roomType
		}
		if size, ok := asNumber(entry["sizeBytes"]); ok && size > 0 {
			asset.SizeBytes = int64(size)
		}
		out = append(out, asset)
	}
	return out
}

func normalizeConfidenceFlags(m map[string]any) map[string]string {
	out := map[string]string{}
	for key, value := range m {
		if len(out) >= 20 {
			break
		}
		if key == "" || len(key) > 40 {
			continue
		}
		annotation := cleanString(value, 40)
		if annotation == "" {
			continue
		}
		out[key] = annotation
	}
	return out
}
