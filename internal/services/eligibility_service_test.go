// internal/services/eligibility_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/javajoker/uniform-backend/internal/models"
)

func TestMaxQuantityNewStudent(t *testing.T) {
	s := NewEligibilityService()

	assert.Equal(t, 3, s.MaxQuantity("Polo Shirt", models.LevelElementary, models.StudentTypeNew, models.GenderMale))
	assert.Equal(t, 2, s.MaxQuantity("P.E. Shirt", models.LevelElementary, models.StudentTypeNew, models.GenderMale))
	assert.Equal(t, 1, s.MaxQuantity("Necktie", models.LevelJuniorHigh, models.StudentTypeNew, models.GenderFemale))
	assert.Equal(t, 3, s.MaxQuantity("Checkered Skirt", models.LevelSeniorHigh, models.StudentTypeNew, models.GenderFemale))
}

func TestMaxQuantityOldStudentOverride(t *testing.T) {
	s := NewEligibilityService()

	// Overridden down for returning students.
	assert.Equal(t, 2, s.MaxQuantity("Polo Shirt", models.LevelElementary, models.StudentTypeOld, models.GenderMale))
	assert.Equal(t, 1, s.MaxQuantity("Logo Patch", models.LevelElementary, models.StudentTypeOld, models.GenderMale))

	// No override: returning students keep the new-student maximum.
	assert.Equal(t, 2, s.MaxQuantity("P.E. Shirt", models.LevelElementary, models.StudentTypeOld, models.GenderMale))
}

func TestMaxQuantityOldStudentZeroOnUnlistedItem(t *testing.T) {
	s := NewEligibilityService()

	// The segment has a rule table but no entry for this item: a returning
	// student gets zero, not the default.
	assert.Equal(t, 0, s.MaxQuantity("Graduation Toga", models.LevelElementary, models.StudentTypeOld, models.GenderMale))

	// A new student in the same position falls back to the default.
	assert.Equal(t, DefaultMaxQuantity, s.MaxQuantity("Graduation Toga", models.LevelElementary, models.StudentTypeNew, models.GenderMale))
}

func TestMaxQuantityUnknownSegment(t *testing.T) {
	s := NewEligibilityService()

	// No rule table at all for the segment: everyone gets the default.
	assert.Equal(t, DefaultMaxQuantity, s.MaxQuantity("Polo Shirt", models.LevelPreschool, models.StudentTypeNew, models.GenderUnisex))
	assert.Equal(t, DefaultMaxQuantity, s.MaxQuantity("Polo Shirt", models.LevelPreschool, models.StudentTypeOld, models.GenderUnisex))
}

func TestMaxQuantitiesForSegment(t *testing.T) {
	s := NewEligibilityService()

	table := s.MaxQuantitiesForSegment(models.LevelElementary, models.StudentTypeNew, models.GenderMale)
	assert.Equal(t, 3, table["polo_shirt"])
	assert.Equal(t, 2, table["pe_shirt"])

	old := s.MaxQuantitiesForSegment(models.LevelElementary, models.StudentTypeOld, models.GenderMale)
	assert.Equal(t, 2, old["polo_shirt"])
	assert.Equal(t, 1, old["logo_patch"])
	// Unoverridden entries are unchanged.
	assert.Equal(t, 2, old["pe_shirt"])

	// Mutating the returned map must not leak into the static tables.
	table["polo_shirt"] = 99
	again := s.MaxQuantitiesForSegment(models.LevelElementary, models.StudentTypeNew, models.GenderMale)
	assert.Equal(t, 3, again["polo_shirt"])

	empty := s.MaxQuantitiesForSegment(models.LevelCollege, models.StudentTypeNew, models.GenderUnisex)
	assert.Empty(t, empty)
}
