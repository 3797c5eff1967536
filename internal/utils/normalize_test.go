// internal/utils/normalize_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeItemName(t *testing.T) {
	tests := []struct {
		name     string
		expected ItemKey
	}{
		{"Polo Shirt", "polo_shirt"},
		{"POLO", "polo_shirt"},
		{"Polo w/ Logo", "polo_shirt"},
		{"P.E. Shirt", "pe_shirt"},
		{"PE T-Shirt", "pe_shirt"},
		{"SHS Jogging Pants", "jogging_pants"},
		{"Jogging Pants (XL)", "jogging_pants"},
		{"Elem PE Pants", "pe_pants"},
		{"Checkered Skirt", "checkered_skirt"},
		{"Checkered Pant", "checkered_pants"},
		{"School ID Lace", "id_lace"},
		{"ID Lace", "id_lace"},
		{"School Logo Patch", "logo_patch"},
		{"Blouse w/ Necktie", "blouse"},
		// Unknown names fall back to their own slug.
		{"Graduation Toga", "graduation_toga"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeItemName(tt.name), "name %q", tt.name)
	}
}

func TestNormalizeItemNameCollapsesSpelling(t *testing.T) {
	// Different spellings of the same item must share one key, otherwise
	// the merge resolver and the eligibility engine disagree.
	a := NormalizeItemName("P.E. Shirt")
	b := NormalizeItemName("PE Shirt (Unisex)")
	assert.Equal(t, a, b)
}

func TestNormalizeSize(t *testing.T) {
	assert.Equal(t, SizeKey("small"), NormalizeSize("Small"))
	assert.Equal(t, SizeKey("small"), NormalizeSize("  SMALL  "))
	assert.Equal(t, SizeKey("small"), NormalizeSize("Small (S)"))
	assert.Equal(t, SizeKey(""), NormalizeSize(""))
}

func TestMatchSize(t *testing.T) {
	assert.True(t, MatchSize("Small", "small"))
	assert.True(t, MatchSize("Small (S)", "Small"))
	assert.True(t, MatchSize("Small (S)", "S"))
	assert.True(t, MatchSize("S", "Small (S)"))

	// Exact matching only: no substring containment.
	assert.False(t, MatchSize("XSmall", "Small"))
	assert.False(t, MatchSize("Small", "XSmall"))
	assert.False(t, MatchSize("Large", "XL"))
	assert.False(t, MatchSize("Medium", "Small"))
}
