// internal/handlers/cart.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nickopusan/caufi-backend/internal/services"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// POST /cart/add
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	item, err := h.cartService.AddItem(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, item)
}

// PATCH /cart/update
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	cart, err := h.cartService.UpdateItem(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// DELETE /cart/:itemId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "BAD_REQUEST", "Invalid item id", nil)
		return
	}

	item, err := h.cartService.RemoveItem(userID, uint(itemID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, item)
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.cartService.ClearCart(userID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"cleared": true})
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	cart, err := h.cartService.GetCart(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}
