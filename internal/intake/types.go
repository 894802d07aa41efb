package intake

import (
	"encoding/json"
	"time"
)

// Draft is the fully-normalized intake document. Every field holds a value
// from its declared option space after Normalize has run; the JSON shape is
// what the wizard sends and what the store persists verbatim.
type Draft struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`

	Basics          Basics           `json:"basics"`
	Floorplan       Floorplan        `json:"floorplan"`
	Lifestyle       Lifestyle        `json:"lifestyle"`
	TradeoffScores  map[string]int   `json:"tradeoffScores"`
	Tradeoffs       map[string]int   `json:"tradeoffs"`
	Style           StyleSection     `json:"style"`
	Mood            MoodSection      `json:"mood"`
	Color           ColorSection     `json:"color"`
	Lighting        LightingSection  `json:"lighting"`
	Furniture       FurnitureSection `json:"furniture"`
	Budget          BudgetSection    `json:"budget"`
	RoomPreferences []RoomPreference `json:"roomPreferences"`
	Inspirations    Inspirations     `json:"inspirations"`
	Assets          []Asset          `json:"assets"`
	Consents        Consents         `json:"consents"`

	// ConfidenceFlags annotates fields the user marked as guesses, keyed by
	// field path ("basics.totalM2": "estimated", "floorplan": "from_photo").
	ConfidenceFlags         map[string]string `json:"confidenceFlags"`
	ContradictionsConfirmed bool              `json:"contradictionsConfirmed"`
	CreatedAt               time.Time         `json:"createdAt"`
	UpdatedAt               time.Time         `json:"updatedAt"`
}

type Basics struct {
	PropertyType   string         `json:"propertyType"`
	City           string         `json:"city"`
	TotalM2        float64        `json:"totalM2"`
	RoomsInScope   []string       `json:"roomsInScope"`
	RoomQuantities map[string]int `json:"roomQuantities"`
}

type Floorplan struct {
	HasPlan          bool              `json:"hasPlan"`
	PlanAssetIDs     []string          `json:"planAssetIds"`
	RoomMeasurements []RoomMeasurement `json:"roomMeasurements"`
}

// RoomMeasurement holds physical dimensions for one in-scope room. When any
// of the three core dimensions was missing from the input, Confidence is low
// and UsedDefaults is true no matter what the caller claimed.
type RoomMeasurement struct {
	RoomType     string    `json:"roomType"`
	WidthMM      int       `json:"widthMm"`
	LengthMM     int       `json:"lengthMm"`
	CeilingMM    int       `json:"ceilingMm"`
	Confidence   string    `json:"confidence"`
	UsedDefaults bool      `json:"usedDefaults"`
	Openings     []Opening `json:"openings"`
}

type Opening struct {
	Kind    string `json:"kind"`
	Wall    string `json:"wall"`
	WidthMM int    `json:"widthMm"`
	SillMM  int    `json:"sillMm,omitempty"`
}

type Lifestyle struct {
	Adults           int    `json:"adults"`
	Children         int    `json:"children"`
	Pets             bool   `json:"pets"`
	StorageNeedScore int    `json:"storageNeedScore"`
	StorageNeedTier  string `json:"storageNeedTier"`
	MaintenanceScore int    `json:"maintenanceScore"`
	MaintenanceTier  string `json:"maintenanceTier"`
}

type StyleSection struct {
	SelectedStyles []string          `json:"selectedStyles"`
	QuizAnswers    map[string]string `json:"quizAnswers"`
}

type MoodSection struct {
	SelectedMoods []string `json:"selectedMoods"`
}

type ColorSection struct {
	Palette    string `json:"palette"`
	Brightness string `json:"brightness"`
	WallColor  string `json:"wallColor"`
}

type LightingSection struct {
	DayNightPriority string   `json:"dayNightPriority"`
	DramaLevel       int      `json:"dramaLevel"`
	Preset           string   `json:"preset"`
	Scenarios        []string `json:"scenarios"`
}

type FurnitureSection struct {
	QualityTier string `json:"qualityTier"`
	CustomBuilt bool   `json:"customBuilt"`
}

type BudgetSection struct {
	MinTotal   float64        `json:"minTotal"`
	MaxTotal   float64        `json:"maxTotal"`
	Allocation map[string]int `json:"allocation"`
}

// RoomPreference carries qualitative preferences for one in-scope room. The
// room-type-specific blocks are variants: exactly the one matching RoomType
// is non-nil after normalization, so a kitchen field cannot exist on a
// bedroom entry.
type RoomPreference struct {
	RoomType        string           `json:"roomType"`
	StoragePriority int              `json:"storagePriority"`
	ActivityScore   int              `json:"activityScore"`
	LightScore      int              `json:"lightScore"`
	ComfortScore    int              `json:"comfortScore"`
	DecorDensity    string           `json:"decorDensity"`
	Living          *LivingRoomPrefs `json:"living,omitempty"`
	Kitchen         *KitchenPrefs    `json:"kitchen,omitempty"`
	Bedroom         *BedroomPrefs    `json:"bedroom,omitempty"`
}

type LivingRoomPrefs struct {
	SeatingType string `json:"seatingType"`
	TVWall      bool   `json:"tvWall"`
	Rug         bool   `json:"rug"`
}

type KitchenPrefs struct {
	Layout      string `json:"layout"`
	Island      bool   `json:"island"`
	HandleStyle string `json:"handleStyle"`
}

type BedroomPrefs struct {
	BedSize      string `json:"bedSize"`
	WardrobeType string `json:"wardrobeType"`
}

type Inspirations struct {
	AssetIDs      []string            `json:"assetIds"`
	AvoidAssetIDs []string            `json:"avoidAssetIds"`
	TagsByAsset   map[string][]string `json:"tagsByAsset"`
}

// Asset is an uploaded file record attached to the draft by the upload
// collaborator; the engine only preserves and validates its shape.
type Asset struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	RoomType     string `json:"roomType,omitempty"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
	SizeBytes    int64  `json:"sizeBytes,omitempty"`
}

// Consents are the mandatory submission acknowledgments. Unlike every other
// field they are never default-filled to true; the validator requires each
// one explicitly.
type Consents struct {
	ConceptOnly    bool `json:"conceptOnly"`
	RevisionPolicy bool `json:"revisionPolicy"`
	Privacy        bool `json:"privacy"`
}

// Project is the denormalized summary generated once, at submission.
type Project struct {
	ID             string    `json:"id"`
	DraftID        string    `json:"draftId"`
	Title          string    `json:"title"`
	City           string    `json:"city"`
	PropertyType   string    `json:"propertyType"`
	TotalM2        float64   `json:"totalM2"`
	Rooms          []string  `json:"rooms"`
	Styles         []string  `json:"styles"`
	Moods          []string  `json:"moods"`
	Palette        string    `json:"palette"`
	BudgetMin      float64   `json:"budgetMin"`
	BudgetMax      float64   `json:"budgetMax"`
	Contradictions []string  `json:"contradictions"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// AsMap round-trips the draft through JSON into the loose map shape the
// normalizer and merge engine operate on.
func (d Draft) AsMap() map[string]any {
	raw, err := json.Marshal(d)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}
