package intake

import (
	"math"
	"strings"
	"time"
)

// Enum is a closed set of string values with a designated fallback. Coercion
// never fails: anything outside the set becomes the fallback.
type Enum struct {
	values   []string
	fallback string
	members  map[string]bool
}

// NewEnum builds an Enum from its fallback and allowed values. The fallback
// does not have to be a member (a blank fallback means "drop on mismatch"
// for set coercion).
func NewEnum(fallback string, values ...string) Enum {
	members := make(map[string]bool, len(values))
	for _, v := range values {
		members[v] = true
	}
	return Enum{values: values, fallback: fallback, members: members}
}

// Contains reports set membership.
func (e Enum) Contains(v string) bool {
	return e.members[v]
}

// Values returns the allowed values in declaration order.
func (e Enum) Values() []string {
	out := make([]string, len(e.values))
	copy(out, e.values)
	return out
}

// Coerce returns the input when it is a member, the fallback otherwise.
// Input is lower-cased and trimmed first; drafts come straight from browser
// forms.
func (e Enum) Coerce(v any) string {
	s, ok := asString(v)
	if !ok {
		return e.fallback
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if e.members[s] {
		return s
	}
	return e.fallback
}

// CoerceSet filters a list value to members, deduplicates preserving input
// order and caps at max entries. When nothing valid survives, the first
// fallback list that contributes members is substituted wholesale (capped at
// max); when the result is still below min, remaining fallback candidates
// pad it out one by one.
func (e Enum) CoerceSet(v any, min, max int, fallbacks ...[]string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, max)
	add := func(s string) {
		if len(out) < max && e.members[s] && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, item := range asList(v) {
		s, ok := asString(item)
		if !ok {
			continue
		}
		add(strings.ToLower(strings.TrimSpace(s)))
	}

	if len(out) == 0 {
		for _, candidates := range fallbacks {
			for _, s := range candidates {
				add(s)
			}
			if len(out) > 0 {
				break
			}
		}
	}
	for _, candidates := range fallbacks {
		if len(out) >= min {
			break
		}
		for _, s := range candidates {
			if len(out) >= min {
				break
			}
			add(s)
		}
	}
	return out
}

// Tolerant readers over decoded JSON. Wrong-typed values read as absent.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asTime(v any, fallback time.Time) time.Time {
	s, ok := asString(v)
	if !ok {
		return fallback
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return fallback
}

// cleanString trims and truncates free-text input.
func cleanString(v any, maxLen int) string {
	s, ok := asString(v)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// stringSet reads a list of strings, deduplicated in order, capped at max.
func stringSet(v any, max int) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, item := range asList(v) {
		if len(out) >= max {
			break
		}
		s, ok := asString(item)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// clampInt reads a numeric value and clamps it into [lo, hi]; non-numeric
// input yields the fallback.
func clampInt(v any, lo, hi, fallback int) int {
	n, ok := asNumber(v)
	if !ok {
		return fallback
	}
	i := int(math.Round(n))
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

// clampScore is clampInt specialised to the 1-10 preference scale.
func clampScore(v any, fallback int) int {
	return clampInt(v, 1, 10, fallback)
}

// positiveDim reads a millimetre dimension; absent or non-positive input
// yields (fallback, false) so callers can force low confidence.
func positiveDim(v any, fallback int) (int, bool) {
	n, ok := asNumber(v)
	if !ok || n <= 0 {
		return fallback, false
	}
	return int(math.Round(n)), true
}

// scoreTier maps a 1-10 score onto the low/medium/high tiers.
func scoreTier(score int) string {
	switch {
	case score <= 3:
		return "low"
	case score <= 7:
		return "medium"
	default:
		return "high"
	}
}

// normalizeWeights clamps each keyed value into [0,100] and rescales the set
// proportionally so it sums to exactly 100. A non-positive raw sum
// distributes 100 as evenly as possible instead. Any residual rounding
// error lands on the first key in the given order; a deficit the first key
// cannot absorb carries into the following keys so no weight goes negative.
func normalizeWeights(raw map[string]float64, keys []string) map[string]int {
	clamped := make(map[string]float64, len(keys))
	var sum float64
	for _, k := range keys {
		v := raw[k]
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		clamped[k] = v
		sum += v
	}

	out := make(map[string]int, len(keys))
	if sum <= 0 {
		base := 100 / len(keys)
		for _, k := range keys {
			out[k] = base
		}
		out[keys[0]] += 100 - base*len(keys)
		return out
	}

	total := 0
	for _, k := range keys {
		scaled := int(math.Round(clamped[k] * 100 / sum))
		out[k] = scaled
		total += scaled
	}
	out[keys[0]] += 100 - total
	for i := 0; out[keys[i]] < 0 && i+1 < len(keys); i++ {
		out[keys[i+1]] += out[keys[i]]
		out[keys[i]] = 0
	}
	return out
}
