// internal/handlers/wishlist.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nickopusan/caufi-backend/internal/services"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

type WishlistHandler struct {
	wishlistService *services.WishlistService
}

func NewWishlistHandler(wishlistService *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	params := utils.GetPaginationParams(c)

	entries, total, err := h.wishlistService.List(userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(entries, total, params))
}

// POST /wishlist
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	entry, err := h.wishlistService.Add(userID, req.ProductID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, entry)
}

// DELETE /wishlist/:productId
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "BAD_REQUEST", "Invalid product id", nil)
		return
	}

	if err := h.wishlistService.Remove(userID, uint(productID)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"removed": true})
}
