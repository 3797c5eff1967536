// internal/services/inventory_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/uniform-backend/internal/models"
)

func sizedVariant(size, key string) models.Variant {
	return models.Variant{Size: size, SizeKey: key}
}

func TestMatchVariantExact(t *testing.T) {
	variants := []models.Variant{
		sizedVariant("Small", "small"),
		sizedVariant("Medium", "medium"),
		sizedVariant("XSmall", "xsmall"),
	}

	v := matchVariant(variants, "small")
	require.NotNil(t, v)
	assert.Equal(t, "Small", v.Size)

	// "Small" must not fuzzy-match "XSmall".
	v = matchVariant(variants, "XSmall")
	require.NotNil(t, v)
	assert.Equal(t, "XSmall", v.Size)

	assert.Nil(t, matchVariant(variants, "Large"))
}

func TestMatchVariantParenAbbrev(t *testing.T) {
	variants := []models.Variant{
		sizedVariant("Small (S)", "small"),
		sizedVariant("Medium (M)", "medium"),
	}

	v := matchVariant(variants, "S")
	require.NotNil(t, v)
	assert.Equal(t, "Small (S)", v.Size)

	v = matchVariant(variants, "Medium")
	require.NotNil(t, v)
	assert.Equal(t, "Medium (M)", v.Size)
}

func TestMatchVariantImplicitBucket(t *testing.T) {
	single := []models.Variant{sizedVariant("", "")}

	// An empty size targets the single implicit bucket.
	v := matchVariant(single, "")
	require.NotNil(t, v)

	// But only when the item has exactly one unlabeled variant.
	sized := []models.Variant{
		sizedVariant("Small", "small"),
		sizedVariant("Medium", "medium"),
	}
	assert.Nil(t, matchVariant(sized, ""))
	assert.Nil(t, matchVariant(nil, ""))
	assert.Nil(t, matchVariant(nil, "Small"))
}
