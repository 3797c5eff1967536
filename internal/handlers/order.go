// internal/handlers/order.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/uniform-backend/internal/models"
	"github.com/javajoker/uniform-backend/internal/services"
	"github.com/javajoker/uniform-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
	authService  *services.AuthService
	voidWindow   time.Duration
}

func NewOrderHandler(orderService *services.OrderService, authService *services.AuthService, voidWindow time.Duration) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		authService:  authService,
		voidWindow:   voidWindow,
	}
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	actor, ok := identityFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	buyer, err := h.authService.GetUserByID(actor.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(buyer, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, order)
}

// GET /orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	actor, ok := identityFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	orders, total, err := h.orderService.GetBuyerOrders(actor.UserID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	actor, ok := identityFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(id, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// PATCH /orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	actor, ok := identityFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Status is required", nil)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(id, req.Status, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	actor, ok := identityFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := h.orderService.UpdateOrderStatus(id, models.OrderStatusCancelled, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /orders/:id/confirm
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	actor, ok := identityFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := h.orderService.ConfirmOrder(id, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /orders/void-sweep
//
// Manual trigger for the unclaimed-order sweep, same window as the
// scheduler's.
func (h *OrderHandler) VoidSweep(c *gin.Context) {
	voided, err := h.orderService.VoidUnclaimedOrdersOlderThan(h.voidWindow)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"voided": voided})
}

func identityFromContext(c *gin.Context) (services.Identity, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return services.Identity{}, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return services.Identity{}, false
	}

	email, _ := utils.GetUserEmailFromContext(c)
	userType, _ := utils.GetUserTypeFromContext(c)
	t := models.UserType(userType)

	return services.Identity{
		UserID: userID,
		Email:  email,
		Staff:  t == models.UserTypeStaff || t == models.UserTypeAdmin,
	}, true
}
