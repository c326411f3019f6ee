// internal/handlers/product.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nickopusan/caufi-backend/internal/models"
	"github.com/nickopusan/caufi-backend/internal/services"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

type ProductHandler struct {
	catalogService *services.CatalogService
}

func NewProductHandler(catalogService *services.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filters := services.ProductFilters{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     models.SortOption(params.Sort),
	}

	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		if priceMin, err := strconv.Atoi(priceMinStr); err == nil {
			filters.PriceMin = &priceMin
		}
	}

	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := strconv.Atoi(priceMaxStr); err == nil {
			filters.PriceMax = &priceMax
		}
	}

	if onlyActiveStr := c.Query("only_active"); onlyActiveStr != "" {
		if onlyActive, err := strconv.ParseBool(onlyActiveStr); err == nil {
			filters.OnlyActive = &onlyActive
		}
	}

	products, total, categoryCounts, err := h.catalogService.ListProducts(filters, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.SuccessResponseWithMeta(c, products, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
		"category_counts": categoryCounts,
	})
}

// GET /products/featured
func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	if limit < 1 || limit > 24 {
		limit = 12
	}

	products, err := h.catalogService.GetFeaturedProducts(limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, products)
}

// GET /products/:idOrSlug
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Param("idOrSlug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	product, err := h.catalogService.CreateProduct(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

// PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "BAD_REQUEST", "Invalid product id", nil)
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	product, err := h.catalogService.UpdateProduct(uint(id), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "BAD_REQUEST", "Invalid product id", nil)
		return
	}

	if err := h.catalogService.DeleteProduct(uint(id)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
