// Package intake implements the design-brief document engine: a total
// normalizer that repairs arbitrary partial input into a valid draft, a
// structural merge for autosave patches, a strict submission validator and a
// contradiction detector. The package is pure: no I/O, no shared state.
package intake

// Property types.
const (
	PropertyApartment  = "apartment"
	PropertyHouse      = "house"
	PropertySingleRoom = "single_room"
	PropertyBusiness   = "business_space"
	PropertyCommercial = "commercial_space"
)

var propertyTypes = NewEnum(PropertyApartment,
	PropertyApartment, PropertyHouse, PropertySingleRoom, PropertyBusiness, PropertyCommercial)

// Room types. Residential and commercial rooms share one namespace; the
// per-property legal lists below decide which are selectable.
const (
	RoomLiving      = "living_room"
	RoomBedroom     = "bedroom"
	RoomKids        = "kids_room"
	RoomKitchen     = "kitchen"
	RoomDining      = "dining_room"
	RoomBathroom    = "bathroom"
	RoomHallway     = "hallway"
	RoomHomeOffice  = "home_office"
	RoomStudio      = "studio_room"
	RoomOffice      = "office"
	RoomMeeting     = "meeting_room"
	RoomReception   = "reception"
	RoomBreak       = "break_room"
	RoomRetailFloor = "retail_floor"
	RoomFitting     = "fitting_area"
	RoomStorage     = "storage_room"
	RoomStaff       = "staff_room"
)

var residentialRooms = []string{
	RoomLiving, RoomBedroom, RoomKids, RoomKitchen, RoomDining,
	RoomBathroom, RoomHallway, RoomHomeOffice,
}

// legalRoomsByProperty is the selectable room list per property type.
var legalRoomsByProperty = map[string][]string{
	PropertyApartment:  residentialRooms,
	PropertyHouse:      residentialRooms,
	PropertySingleRoom: {RoomStudio},
	PropertyBusiness:   {RoomOffice, RoomMeeting, RoomReception, RoomBreak},
	PropertyCommercial: {RoomRetailFloor, RoomFitting, RoomStorage, RoomStaff},
}

// defaultRoomsByProperty is the canonical room set substituted when the
// caller's selection is empty after filtering.
var defaultRoomsByProperty = map[string][]string{
	PropertyApartment:  {RoomLiving, RoomBedroom, RoomKitchen},
	PropertyHouse:      {RoomLiving, RoomBedroom, RoomKitchen},
	PropertySingleRoom: {RoomStudio},
	PropertyBusiness:   {RoomOffice, RoomMeeting},
	PropertyCommercial: {RoomRetailFloor, RoomStorage},
}

// defaultFloorAreaByProperty is the fallback total area in m².
var defaultFloorAreaByProperty = map[string]float64{
	PropertyApartment:  65,
	PropertyHouse:      140,
	PropertySingleRoom: 30,
	PropertyBusiness:   120,
	PropertyCommercial: 180,
}

// RoomTemplate carries per-room-type default dimensions in millimetres,
// used to repair missing or non-positive measurements.
type RoomTemplate struct {
	WidthMM   int
	LengthMM  int
	CeilingMM int
	DoorMM    int
	WindowMM  int
	SillMM    int
}

var roomTemplates = map[string]RoomTemplate{
	RoomLiving:      {4200, 5000, 2700, 900, 1800, 600},
	RoomBedroom:     {3200, 4000, 2700, 900, 1400, 900},
	RoomKids:        {3000, 3600, 2700, 800, 1200, 900},
	RoomKitchen:     {3000, 3600, 2700, 800, 1200, 1100},
	RoomDining:      {3400, 4200, 2700, 900, 1600, 800},
	RoomBathroom:    {2000, 2400, 2500, 700, 600, 1500},
	RoomHallway:     {1400, 3600, 2700, 900, 0, 0},
	RoomHomeOffice:  {2800, 3200, 2700, 800, 1200, 900},
	RoomStudio:      {4500, 6000, 2800, 900, 1800, 700},
	RoomOffice:      {3600, 5400, 3000, 900, 1800, 900},
	RoomMeeting:     {3600, 4800, 3000, 900, 1800, 900},
	RoomReception:   {3000, 4200, 3000, 1100, 1800, 900},
	RoomBreak:       {2800, 3600, 3000, 900, 1200, 1100},
	RoomRetailFloor: {6000, 9000, 3200, 1400, 2400, 400},
	RoomFitting:     {1800, 2000, 2800, 700, 0, 0},
	RoomStorage:     {2400, 3000, 2800, 1000, 0, 0},
	RoomStaff:       {2800, 3600, 2800, 900, 1200, 1100},
}

var allRoomTypes = NewEnum(RoomLiving,
	RoomLiving, RoomBedroom, RoomKids, RoomKitchen, RoomDining, RoomBathroom,
	RoomHallway, RoomHomeOffice, RoomStudio, RoomOffice, RoomMeeting,
	RoomReception, RoomBreak, RoomRetailFloor, RoomFitting, RoomStorage, RoomStaff)

// Styles. Selection is 1-2 entries.
const (
	StyleModernMinimal = "modern_minimal"
	StyleScandinavian  = "scandinavian"
	StyleJapandi       = "japandi"
	StyleIndustrial    = "industrial"
	StyleDarkElegant   = "dark_elegant"
	StyleBoho          = "boho_eclectic"
	StyleClassic       = "classic_contemporary"
)

var styleOptions = NewEnum(StyleScandinavian,
	StyleModernMinimal, StyleScandinavian, StyleJapandi, StyleIndustrial,
	StyleDarkElegant, StyleBoho, StyleClassic)

var defaultStyles = []string{StyleScandinavian}

// minimalistStyles drive the keep-white wall colour recommendation.
var minimalistStyles = map[string]bool{
	StyleModernMinimal: true,
	StyleJapandi:       true,
}

// Moods. Selection is 2-3 entries.
const (
	MoodBrightAiry     = "bright_airy"
	MoodWarmCozy       = "warm_cozy"
	MoodCalmMinimal    = "calm_minimal"
	MoodBoldDramatic   = "bold_dramatic"
	MoodNaturalOrganic = "natural_organic"
	MoodPlayfulVivid   = "playful_vivid"
	MoodRefinedElegant = "refined_elegant"
)

var moodOptions = NewEnum(MoodWarmCozy,
	MoodBrightAiry, MoodWarmCozy, MoodCalmMinimal, MoodBoldDramatic,
	MoodNaturalOrganic, MoodPlayfulVivid, MoodRefinedElegant)

var defaultMoods = []string{MoodBrightAiry, MoodWarmCozy}

// Colour block.
var paletteOptions = NewEnum("warm_neutrals",
	"warm_neutrals", "cool_neutrals", "earth_tones", "monochrome", "muted_pastels", "jewel_tones")

const (
	BrightnessLight  = "light"
	BrightnessMedium = "medium"
	BrightnessDark   = "dark"
)

var brightnessOptions = NewEnum(BrightnessLight, BrightnessLight, BrightnessMedium, BrightnessDark)

const (
	WallKeepWhite = "keep_white"
	WallGreige    = "greige"
	WallAccent    = "accent_wall"
	WallRecommend = "recommend_for_me"
)

var wallColorOptions = NewEnum(WallRecommend, WallKeepWhite, WallGreige, WallAccent, WallRecommend)

// Lighting block.
const (
	DayPriorityDay     = "day"
	DayPriorityBoth    = "both"
	DayPriorityEvening = "evening"

	PresetDayBright   = "day_bright"
	PresetBalanced    = "balanced"
	PresetEveningCozy = "evening_cozy"

	ScenarioFlatCeiling = "flat_ceiling_only"
	ScenarioLayered     = "layered_lighting"
	ScenarioAccentSpots = "accent_spots"
	ScenarioSmartScenes = "smart_scenes"
)

var dayNightOptions = NewEnum(DayPriorityBoth, DayPriorityDay, DayPriorityBoth, DayPriorityEvening)

var presetByDayNight = map[string]string{
	DayPriorityDay:     PresetDayBright,
	DayPriorityBoth:    PresetBalanced,
	DayPriorityEvening: PresetEveningCozy,
}

var scenarioOptions = NewEnum(ScenarioFlatCeiling,
	ScenarioFlatCeiling, ScenarioLayered, ScenarioAccentSpots, ScenarioSmartScenes)

// highDramaThreshold forces the evening preset regardless of day/night
// priority and feeds the calm-vs-drama contradiction rule.
const highDramaThreshold = 8

// Furniture block.
const (
	TierBudget   = "budget"
	TierStandard = "standard"
	TierPremium  = "premium"
)

var furnitureTierOptions = NewEnum(TierStandard, TierBudget, TierStandard, TierPremium)

// premiumCostPerM2 is the per-m² heuristic behind the premium-vs-budget
// contradiction rule. EUR-denominated; do not assume it ports to other
// markets.
const premiumCostPerM2 = 900

// Decor density per room.
const (
	DensityMinimal  = "minimal"
	DensityBalanced = "balanced"
	DensityRich     = "rich"
)

var densityOptions = NewEnum(DensityBalanced, DensityMinimal, DensityBalanced, DensityRich)

// Tradeoff and budget allocation key orders. The first key absorbs any
// rounding remainder when rescaling to 100, so the order is part of the
// contract.
var tradeoffKeys = []string{"aesthetics", "functionality", "budget_control", "speed", "durability"}

var allocationKeys = []string{"furniture", "lighting", "textiles", "decor", "renovation"}

// TradeoffKeys returns the tradeoff weight keys in canonical order.
func TradeoffKeys() []string {
	return append([]string(nil), tradeoffKeys...)
}

// AllocationKeys returns the budget allocation keys in canonical order.
func AllocationKeys() []string {
	return append([]string(nil), allocationKeys...)
}

var defaultAllocation = map[string]float64{
	"furniture":  40,
	"lighting":   15,
	"textiles":   15,
	"decor":      10,
	"renovation": 20,
}

// Budget bounds (EUR).
const (
	defaultBudgetMin = 5000
	defaultBudgetMax = 15000
	maxBudgetTotal   = 1_000_000
)

// Room preference variants.
var seatingOptions = NewEnum("sofa_classic", "sofa_classic", "sofa_corner", "modular", "lounge_chairs")

var kitchenLayoutOptions = NewEnum("l_shape", "single_wall", "l_shape", "u_shape", "galley", "island")

var handleOptions = NewEnum("classic", "handleless", "classic", "mixed")

var bedSizeOptions = NewEnum("double", "single", "double", "queen", "king")

var wardrobeOptions = NewEnum("built_in", "built_in", "freestanding", "walk_in")

// Measurement confidence tiers.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

var confidenceOptions = NewEnum(ConfidenceLow, ConfidenceHigh, ConfidenceMedium, ConfidenceLow)

// Wall positions and opening kinds for measurements.
var wallOptions = NewEnum("north", "north", "south", "east", "west")

const (
	OpeningDoor   = "door"
	OpeningWindow = "window"
)

var openingKindOptions = NewEnum(OpeningDoor, OpeningDoor, OpeningWindow)

// Asset kinds.
const (
	AssetPlan        = "plan"
	AssetInspiration = "inspiration"
	AssetAvoid       = "avoid"
	AssetReference   = "reference"
)

var assetKindOptions = NewEnum(AssetReference, AssetPlan, AssetInspiration, AssetAvoid, AssetReference)

// Draft lifecycle.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)

var statusOptions = NewEnum(StatusDraft, StatusDraft, StatusSubmitted)

// quizRule maps one quiz answer to candidate styles, moods and an optional
// furniture tier. Candidates only apply when the user has made no explicit
// selection for the field.
type quizRule struct {
	Styles []string
	Moods  []string
	Tier   string
}

// quizRules is keyed by "question=answer". Unknown pairs contribute nothing.
var quizRules = map[string]quizRule{
	"materials=natural":  {Styles: []string{StyleJapandi, StyleScandinavian}, Moods: []string{MoodNaturalOrganic}},
	"materials=sleek":    {Styles: []string{StyleModernMinimal}, Moods: []string{MoodCalmMinimal}},
	"materials=raw":      {Styles: []string{StyleIndustrial}, Moods: []string{MoodBoldDramatic}, Tier: TierBudget},
	"materials=timeless": {Styles: []string{StyleClassic}, Moods: []string{MoodRefinedElegant}, Tier: TierPremium},
	"clutter=bare":       {Styles: []string{StyleModernMinimal}, Moods: []string{MoodCalmMinimal}},
	"clutter=curated":    {Styles: []string{StyleJapandi}},
	"clutter=collected":  {Styles: []string{StyleBoho}, Moods: []string{MoodPlayfulVivid}},
	"palette=light":      {Moods: []string{MoodBrightAiry}},
	"palette=warm":       {Moods: []string{MoodWarmCozy}},
	"palette=dark":       {Styles: []string{StyleDarkElegant}, Moods: []string{MoodRefinedElegant}},
	"palette=bold":       {Styles: []string{StyleBoho}, Moods: []string{MoodBoldDramatic}},
	"evenings=hosting":   {Moods: []string{MoodWarmCozy}, Tier: TierStandard},
	"evenings=reading":   {Moods: []string{MoodCalmMinimal}},
	"evenings=screening": {Tier: TierStandard},
}

// quizQuestionOrder fixes evaluation order so inferred candidate lists are
// deterministic regardless of map iteration.
var quizQuestionOrder = []string{"materials", "clutter", "palette", "evenings"}

var quizAnswerOptions = map[string]Enum{
	"materials": NewEnum("", "natural", "sleek", "raw", "timeless"),
	"clutter":   NewEnum("", "bare", "curated", "collected"),
	"palette":   NewEnum("", "light", "warm", "dark", "bold"),
	"evenings":  NewEnum("", "hosting", "reading", "screening"),
}

// legalRooms returns the selectable room list for a property type.
func legalRooms(propertyType string) []string {
	if rooms, ok := legalRoomsByProperty[propertyType]; ok {
		return rooms
	}
	return legalRoomsByProperty[PropertyApartment]
}

// defaultRooms returns the canonical room set for a property type.
func defaultRooms(propertyType string) []string {
	if rooms, ok := defaultRoomsByProperty[propertyType]; ok {
		return rooms
	}
	return defaultRoomsByProperty[PropertyApartment]
}

// templateFor returns the measurement template for a room type. Every legal
// room type has a template; the living-room template backstops anything else.
func templateFor(roomType string) RoomTemplate {
	if tpl, ok := roomTemplates[roomType]; ok {
		return tpl
	}
	return roomTemplates[RoomLiving]
}
