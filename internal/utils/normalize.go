// internal/utils/normalize.go
package utils

import (
	"regexp"
	"strings"
)

// ItemKey is the canonical identity of a catalog item name. The eligibility
// engine, the duplicate-merge resolver and the stock ledger all resolve
// free-text names through the same table so their notions of "same item"
// cannot drift.
type ItemKey string

// SizeKey is the canonical identity of a size label.
type SizeKey string

var (
	parenRE      = regexp.MustCompile(`\([^)]*\)`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// normalizeText lowercases, drops parenthetical content and dot/apostrophe
// punctuation, and collapses whitespace. "P.E. Shirt (New)" -> "pe shirt".
func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = parenRE.ReplaceAllString(s, " ")
	s = strings.NewReplacer(".", "", "'", "", ",", " ", "-", " ", "/", " ").Replace(s)
	s = whitespaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// parenAbbrev extracts the first parenthetical abbreviation of a label,
// normalized: "Small (S)" -> "s". Empty when the label has none.
func parenAbbrev(s string) string {
	m := parenRE.FindString(s)
	if m == "" {
		return ""
	}
	return normalizeText(strings.Trim(m, "()"))
}

// itemAliases maps normalized free-text names to canonical keys. Names not
// listed fall back to their own normalized slug, so the table only needs
// the spellings that genuinely diverge.
var itemAliases = map[string]ItemKey{
	"pe shirt":          "pe_shirt",
	"pe t shirt":        "pe_shirt",
	"pe tshirt":         "pe_shirt",
	"polo":              "polo_shirt",
	"polo w logo":       "polo_shirt",
	"blouse w necktie":  "blouse",
	"checkered pant":    "checkered_pants",
	"checkered skirt":   "checkered_skirt",
	"id lace":           "id_lace",
	"school id lace":    "id_lace",
	"patch":             "logo_patch",
	"school logo patch": "logo_patch",
}

// itemPatterns handle segment-specific prefixes: any name containing the
// fragment resolves to one key regardless of decoration
// ("SHS Jogging Pants", "Jogging Pants (XL)" ...).
var itemPatterns = []struct {
	fragment string
	key      ItemKey
}{
	{"jogging pants", "jogging_pants"},
	{"pe shirt", "pe_shirt"},
	{"pe pants", "pe_pants"},
}

// NormalizeItemName resolves a free-text item name to its canonical key.
func NormalizeItemName(name string) ItemKey {
	n := normalizeText(name)
	for _, p := range itemPatterns {
		if strings.Contains(n, p.fragment) {
			return p.key
		}
	}
	if key, ok := itemAliases[n]; ok {
		return key
	}
	return ItemKey(strings.ReplaceAll(n, " ", "_"))
}

// NormalizeSize resolves a size label to its canonical key.
func NormalizeSize(label string) SizeKey {
	return SizeKey(normalizeText(label))
}

// MatchSize reports whether a requested size refers to a variant's size
// label. Matching is exact after normalization; substring containment is
// deliberately not used ("Small" must not match "XSmall"). A parenthetical
// abbreviation on either side is tried as a fallback, so "S" matches
// "Small (S)".
func MatchSize(variantLabel, requested string) bool {
	vn := NormalizeSize(variantLabel)
	rn := NormalizeSize(requested)
	if vn == rn {
		return true
	}
	if a := parenAbbrev(variantLabel); a != "" && a == string(rn) {
		return true
	}
	if a := parenAbbrev(requested); a != "" && a == string(vn) {
		return true
	}
	return false
}
