package intake

import (
	"time"
)

// protectedKeys cannot be set through a patch: identity and lifecycle are
// owned by the service, timestamps by the merge itself.
var protectedKeys = map[string]bool{
	"id":                      true,
	"status":                  true,
	"createdAt":               true,
	"updatedAt":               true,
	"contradictionsConfirmed": true,
}

// mapMergedFields are section fields whose map values merge key-wise
// (patch keys overwrite, unspecified keys are retained) instead of being
// replaced outright.
var mapMergedFields = map[string]map[string]bool{
	"basics":          {"roomQuantities": true},
	"style":           {"quizAnswers": true},
	"budget":          {"allocation": true},
	"inspirations":    {"tagsByAsset": true},
	"confidenceFlags": nil, // whole top-level field is a map, handled below
}

// Merge combines a normalized draft with an autosave patch and returns the
// re-normalized result. The merge is shallow per section (a patch section's
// fields overwrite the current section's at field level) except for the
// map-valued subfields above, which merge key-wise. roomPreferences,
// floorplan.roomMeasurements and assets are positional arrays and are
// replaced wholesale when the patch carries them. updatedAt is always
// stamped from now, never taken from the patch.
func Merge(current Draft, patch map[string]any, now time.Time) Draft {
	base := current.AsMap()

	for key, patchValue := range patch {
		if protectedKeys[key] {
			continue
		}
		if key == "confidenceFlags" {
			base[key] = mergeKeywise(asMap(base[key]), asMap(patchValue))
			continue
		}
		patchSection := asMap(patchValue)
		baseSection := asMap(base[key])
		if patchSection == nil || baseSection == nil {
			// Scalar or list-valued top-level field (tradeoffScores maps
			// merge field-at-a-time below; arrays replace wholesale).
			base[key] = patchValue
			continue
		}
		base[key] = mergeSection(key, baseSection, patchSection)
	}

	merged := Normalize(base)
	merged.ID = current.ID
	merged.Status = current.Status
	merged.ContradictionsConfirmed = current.ContradictionsConfirmed
	merged.CreatedAt = current.CreatedAt
	merged.UpdatedAt = now.UTC()
	return merged
}

func mergeSection(section string, base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	keywise := mapMergedFields[section]
	for field, patchValue := range patch {
		if keywise[field] {
			out[field] = mergeKeywise(asMap(out[field]), asMap(patchValue))
			continue
		}
		out[field] = patchValue
	}
	return out
}

func mergeKeywise(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
