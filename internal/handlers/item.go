// internal/handlers/item.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/uniform-backend/internal/models"
	"github.com/javajoker/uniform-backend/internal/services"
	"github.com/javajoker/uniform-backend/internal/utils"
)

type ItemHandler struct {
	itemService      *services.ItemService
	inventoryService *services.InventoryService
}

func NewItemHandler(itemService *services.ItemService, inventoryService *services.InventoryService) *ItemHandler {
	return &ItemHandler{
		itemService:      itemService,
		inventoryService: inventoryService,
	}
}

// GET /items
func (h *ItemHandler) GetItems(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.ItemSearchParams{
		PaginationParams: params,
	}

	if level := c.Query("level"); level != "" {
		l := models.EducationLevel(level)
		searchParams.Level = &l
	}

	if gender := c.Query("gender"); gender != "" {
		g := models.Gender(gender)
		searchParams.Gender = &g
	}

	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		if inStock, err := strconv.ParseBool(inStockStr); err == nil {
			searchParams.InStock = &inStock
		}
	}

	items, total, err := h.itemService.SearchItems(searchParams)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(items, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /items
//
// Creation is merge-aware: resubmitting an existing item+size folds the
// stock into the ledger and answers 200 instead of 201.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req services.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	item, merged, err := h.itemService.CreateItem(&req, actorIDFromContext(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if merged {
		utils.SuccessResponse(c, gin.H{"item": item, "merged": true})
		return
	}
	utils.CreatedResponse(c, gin.H{"item": item, "merged": false})
}

// GET /items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	item, err := h.itemService.GetItem(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, item)
}

// GET /items/:id/statistics
func (h *ItemHandler) GetItemStatistics(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	stats, err := h.itemService.GetItemStatistics(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// POST /items/:id/stock
func (h *ItemHandler) AddStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	item, err := h.inventoryService.AddStock(id, &req, actorIDFromContext(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, item)
}

// POST /items/:id/returns
func (h *ItemHandler) RecordReturn(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	item, err := h.inventoryService.RecordReturn(id, &req, actorIDFromContext(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, item)
}

// POST /items/:id/reset-baseline
func (h *ItemHandler) ResetBaseline(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	item, err := h.inventoryService.ResetBeginningInventory(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, item)
}

// GET /items/:id/movements
func (h *ItemHandler) GetMovements(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	movements, total, err := h.inventoryService.GetMovements(id, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(movements, total, params)
	utils.PaginatedResponse(c, result)
}

// DELETE /items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.itemService.DeleteItem(id); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Item deleted"})
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func actorIDFromContext(c *gin.Context) *uuid.UUID {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return nil
	}
	id, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil
	}
	return &id
}
