// internal/services/eligibility_service.go
package services

import (
	"github.com/javajoker/uniform-backend/internal/models"
	"github.com/javajoker/uniform-backend/internal/utils"
)

// EligibilityService answers how many units of an item a buyer segment may
// order. It is a pure lookup over static tables and is called once per
// line item during order validation.
type EligibilityService struct{}

func NewEligibilityService() *EligibilityService {
	return &EligibilityService{}
}

// DefaultMaxQuantity applies when a segment has no rule table.
const DefaultMaxQuantity = 1

type segmentKey struct {
	Level  models.EducationLevel
	Gender models.Gender
}

// newStudentRules are the per-item maxima for newly enrolled students,
// keyed by canonical item key. These define which items a segment is
// expected to need at all; returning students are capped by this table's
// key set.
var newStudentRules = map[segmentKey]map[utils.ItemKey]int{
	{models.LevelPreschool, models.GenderMale}: {
		"polo_shirt":    3,
		"shorts":        3,
		"pe_shirt":      2,
		"jogging_pants": 2,
		"id_lace":       1,
	},
	{models.LevelPreschool, models.GenderFemale}: {
		"blouse":        3,
		"skirt":         3,
		"pe_shirt":      2,
		"jogging_pants": 2,
		"id_lace":       1,
	},
	{models.LevelElementary, models.GenderMale}: {
		"polo_shirt":    3,
		"pants":         3,
		"pe_shirt":      2,
		"pe_pants":      2,
		"jogging_pants": 2,
		"logo_patch":    3,
		"id_lace":       1,
	},
	{models.LevelElementary, models.GenderFemale}: {
		"blouse":        3,
		"skirt":         3,
		"necktie":       1,
		"pe_shirt":      2,
		"pe_pants":      2,
		"jogging_pants": 2,
		"logo_patch":    3,
		"id_lace":       1,
	},
	{models.LevelJuniorHigh, models.GenderMale}: {
		"polo_shirt":    3,
		"pants":         3,
		"pe_shirt":      2,
		"pe_pants":      2,
		"jogging_pants": 2,
		"logo_patch":    2,
		"id_lace":       1,
	},
	{models.LevelJuniorHigh, models.GenderFemale}: {
		"blouse":          3,
		"checkered_skirt": 3,
		"necktie":         1,
		"pe_shirt":        2,
		"pe_pants":        2,
		"jogging_pants":   2,
		"logo_patch":      2,
		"id_lace":         1,
	},
	{models.LevelSeniorHigh, models.GenderMale}: {
		"polo_shirt":      3,
		"checkered_pants": 3,
		"necktie":         1,
		"pe_shirt":        2,
		"jogging_pants":   2,
		"id_lace":         1,
	},
	{models.LevelSeniorHigh, models.GenderFemale}: {
		"blouse":          3,
		"checkered_skirt": 3,
		"necktie":         1,
		"pe_shirt":        2,
		"jogging_pants":   2,
		"id_lace":         1,
	},
	{models.LevelCollege, models.GenderMale}: {
		"polo_shirt":    2,
		"pants":         2,
		"pe_shirt":      2,
		"jogging_pants": 1,
		"id_lace":       1,
	},
	{models.LevelCollege, models.GenderFemale}: {
		"blouse":        2,
		"skirt":         2,
		"pe_shirt":      2,
		"jogging_pants": 1,
		"id_lace":       1,
	},
}

// oldStudentOverrides reduce maxima for returning students on items they
// already own from a previous year. Items absent here but present in the
// new-student table keep the new-student maximum.
var oldStudentOverrides = map[segmentKey]map[utils.ItemKey]int{
	{models.LevelElementary, models.GenderMale}: {
		"polo_shirt": 2,
		"pants":      2,
		"logo_patch": 1,
	},
	{models.LevelElementary, models.GenderFemale}: {
		"blouse":     2,
		"skirt":      2,
		"logo_patch": 1,
	},
	{models.LevelJuniorHigh, models.GenderMale}: {
		"polo_shirt": 2,
		"pants":      2,
	},
	{models.LevelJuniorHigh, models.GenderFemale}: {
		"blouse":          2,
		"checkered_skirt": 2,
	},
	{models.LevelSeniorHigh, models.GenderMale}: {
		"polo_shirt":      2,
		"checkered_pants": 2,
	},
	{models.LevelSeniorHigh, models.GenderFemale}: {
		"blouse":          2,
		"checkered_skirt": 2,
	},
}

// MaxQuantity resolves the item name to its canonical key and returns the
// buyer's allowance. Returning ("old") students are allowed an item only
// when a new-student rule for that key exists; otherwise the allowance is
// zero rather than the default, so re-enrolling buyers get nothing on
// items they should not need again.
func (s *EligibilityService) MaxQuantity(itemName string, level models.EducationLevel, studentType models.StudentType, gender models.Gender) int {
	key := utils.NormalizeItemName(itemName)
	seg := segmentKey{Level: level, Gender: gender}

	rules, ok := newStudentRules[seg]
	if !ok {
		return DefaultMaxQuantity
	}

	max, has := rules[key]

	if studentType == models.StudentTypeOld {
		if !has {
			return 0
		}
		if override, ok := oldStudentOverrides[seg][key]; ok {
			return override
		}
		return max
	}

	if !has {
		return DefaultMaxQuantity
	}
	return max
}

// MaxQuantitiesForSegment returns the full allowance table for a segment.
func (s *EligibilityService) MaxQuantitiesForSegment(level models.EducationLevel, studentType models.StudentType, gender models.Gender) map[utils.ItemKey]int {
	seg := segmentKey{Level: level, Gender: gender}

	rules, ok := newStudentRules[seg]
	if !ok {
		return map[utils.ItemKey]int{}
	}

	result := make(map[utils.ItemKey]int, len(rules))
	for key, max := range rules {
		result[key] = max
	}

	if studentType == models.StudentTypeOld {
		for key, override := range oldStudentOverrides[seg] {
			if _, has := result[key]; has {
				result[key] = override
			}
		}
	}

	return result
}
