// internal/handlers/order.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nickopusan/caufi-backend/internal/models"
	"github.com/nickopusan/caufi-backend/internal/services"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := h.orderService.CreateOrder(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /orders/:id/pay
func (h *OrderHandler) PayOrder(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "BAD_REQUEST", "Invalid order id", nil)
		return
	}

	payment, err := h.orderService.PayOrder(uint(orderID), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"payment": payment})
}

// POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "BAD_REQUEST", "Invalid order id", nil)
		return
	}

	order, err := h.orderService.CancelOrder(uint(orderID), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// GET /orders/me
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	orders, total, err := h.orderService.GetUserOrders(userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "BAD_REQUEST", "Invalid order id", nil)
		return
	}

	order, err := h.orderService.GetOrder(uint(orderID), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// PATCH /admin/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "BAD_REQUEST", "Invalid order id", nil)
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := h.orderService.UpdateStatus(uint(orderID), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}
