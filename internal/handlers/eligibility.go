// internal/handlers/eligibility.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/uniform-backend/internal/models"
	"github.com/javajoker/uniform-backend/internal/services"
	"github.com/javajoker/uniform-backend/internal/utils"
)

type EligibilityHandler struct {
	eligibilityService *services.EligibilityService
}

func NewEligibilityHandler(eligibilityService *services.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{
		eligibilityService: eligibilityService,
	}
}

// GET /eligibility?item=&level=&student_type=&gender=
func (h *EligibilityHandler) GetMaxQuantity(c *gin.Context) {
	itemName := c.Query("item")
	if itemName == "" {
		utils.BadRequestResponse(c, "item is required", nil)
		return
	}

	level := models.EducationLevel(c.Query("level"))
	studentType := models.StudentType(c.Query("student_type"))
	gender := models.Gender(c.Query("gender"))

	max := h.eligibilityService.MaxQuantity(itemName, level, studentType, gender)
	utils.SuccessResponse(c, gin.H{
		"item":         itemName,
		"max_quantity": max,
	})
}

// GET /eligibility/segment?level=&student_type=&gender=
func (h *EligibilityHandler) GetSegmentTable(c *gin.Context) {
	level := models.EducationLevel(c.Query("level"))
	studentType := models.StudentType(c.Query("student_type"))
	gender := models.Gender(c.Query("gender"))

	table := h.eligibilityService.MaxQuantitiesForSegment(level, studentType, gender)
	utils.SuccessResponse(c, gin.H{
		"level":        level,
		"student_type": studentType,
		"gender":       gender,
		"allowances":   table,
	})
}
