// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/nickopusan/caufi-backend/internal/models"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

type CatalogService struct {
	db      *gorm.DB
	storage ImageStorage
}

// ImageStorage is the object-storage collaborator; the catalog only deletes
// already-stored blobs, never uploads.
type ImageStorage interface {
	DeleteImage(imageURL string) error
}

type ProductFilters struct {
	Search     string
	Category   string
	PriceMin   *int
	PriceMax   *int
	OnlyActive *bool
	Sort       models.SortOption
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type VariantRequest struct {
	Size          string `json:"size"`
	Color         string `json:"color"`
	RegularPrice  int    `json:"regular_price" validate:"required,gt=0"`
	DiscountPrice *int   `json:"discount_price" validate:"omitempty,gt=0"`
	Stock         int    `json:"stock" validate:"min=0"`
	ImageURL      string `json:"image_url"`
}

type ImageRequest struct {
	ImageURL  string `json:"image_url" validate:"required"`
	ImageName string `json:"image_name"`
	ImageSize int    `json:"image_size"`
}

type CreateProductRequest struct {
	Name           string           `json:"name" validate:"required,min=3,max=255"`
	Category       string           `json:"category" validate:"required"`
	Manufacturer   string           `json:"manufacturer"`
	ProductSummary string           `json:"product_summary"`
	Description    string           `json:"description" validate:"required,min=10"`
	CareGuide      string           `json:"care_guide"`
	IsActive       bool             `json:"is_active"`
	IsFeatured     bool             `json:"is_featured"`
	Variants       []VariantRequest `json:"variants" validate:"required,min=1,dive"`
	Images         []ImageRequest   `json:"images" validate:"dive"`
	Materials      []string         `json:"materials"`
}

// UpdateProductRequest is a sparse update: only non-nil fields are applied,
// field by field, against an explicit allow-list.
type UpdateProductRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=3,max=255"`
	Category       *string `json:"category"`
	Manufacturer   *string `json:"manufacturer"`
	ProductSummary *string `json:"product_summary"`
	Description    *string `json:"description" validate:"omitempty,min=10"`
	CareGuide      *string `json:"care_guide"`
	IsActive       *bool   `json:"is_active"`
	IsFeatured     *bool   `json:"is_featured"`
}

func NewCatalogService(db *gorm.DB, storage ImageStorage) *CatalogService {
	return &CatalogService{db: db, storage: storage}
}

// ListProducts returns a filtered, paginated page of the catalog together
// with the total match count and per-category counts for the filter UI.
func (s *CatalogService) ListProducts(filters ProductFilters, params utils.PaginationParams) ([]models.Product, int64, []CategoryCount, error) {
	query := s.db.Model(&models.Product{}).
		Preload("Variants").Preload("Images").Preload("Materials")

	onlyActive := true
	if filters.OnlyActive != nil {
		onlyActive = *filters.OnlyActive
	}
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	if filters.Search != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(filters.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}

	// Price bounds run against the variants' effective price, since that is
	// what a sale would actually charge.
	if filters.PriceMin != nil {
		query = query.Where(
			"id IN (?)",
			s.db.Model(&models.ProductVariant{}).Select("product_id").
				Where("COALESCE(discount_price, regular_price) >= ?", *filters.PriceMin),
		)
	}
	if filters.PriceMax != nil {
		query = query.Where(
			"id IN (?)",
			s.db.Model(&models.ProductVariant{}).Select("product_id").
				Where("COALESCE(discount_price, regular_price) <= ?", *filters.PriceMax),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, nil, fmt.Errorf("failed to count products: %w", err)
	}

	switch filters.Sort {
	case models.SortPriceAsc:
		query = query.Order(minVariantPriceExpr + " ASC")
	case models.SortPriceDesc:
		query = query.Order(minVariantPriceExpr + " DESC")
	case models.SortNameAsc:
		query = query.Order("name ASC")
	default:
		query = query.Order("created_at DESC")
	}

	var products []models.Product
	if err := utils.ApplyPagination(query, params).Find(&products).Error; err != nil {
		return nil, 0, nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	counts, err := s.categoryCounts(onlyActive)
	if err != nil {
		return nil, 0, nil, err
	}

	return products, total, counts, nil
}

const minVariantPriceExpr = "(SELECT MIN(COALESCE(discount_price, regular_price)) " +
	"FROM product_variants WHERE product_variants.product_id = products.id)"

func (s *CatalogService) categoryCounts(onlyActive bool) ([]CategoryCount, error) {
	query := s.db.Model(&models.Product{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	var counts []CategoryCount
	if err := query.Select("category, COUNT(*) as count").
		Group("category").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	return counts, nil
}

// GetProduct looks up by numeric id first, then by slug.
func (s *CatalogService) GetProduct(idOrSlug string) (*models.Product, error) {
	query := s.db.Preload("Variants").Preload("Images").Preload("Materials")

	var product models.Product
	var err error
	if id, convErr := strconv.ParseUint(idOrSlug, 10, 64); convErr == nil {
		err = query.First(&product, uint(id)).Error
	} else {
		err = query.Where("slug = ?", idOrSlug).First(&product).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

func (s *CatalogService) GetFeaturedProducts(limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("is_active = ? AND is_featured = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Preload("Variants").Preload("Images").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch featured products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	slug, err := utils.UniqueProductSlug(s.db, req.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to generate slug: %w", err)
	}

	product := models.Product{
		Name:           req.Name,
		Slug:           slug,
		SKU:            utils.GenerateSKU(),
		Category:       req.Category,
		Manufacturer:   req.Manufacturer,
		ProductSummary: req.ProductSummary,
		Description:    req.Description,
		CareGuide:      req.CareGuide,
		IsActive:       req.IsActive,
		IsFeatured:     req.IsFeatured,
	}
	for _, v := range req.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			SKU:           utils.GenerateSKU(),
			Size:          v.Size,
			Color:         v.Color,
			RegularPrice:  v.RegularPrice,
			DiscountPrice: v.DiscountPrice,
			Stock:         v.Stock,
			ImageURL:      v.ImageURL,
		})
	}
	for _, img := range req.Images {
		product.Images = append(product.Images, models.ProductImage{
			ImageURL:  img.ImageURL,
			ImageName: img.ImageName,
			ImageSize: img.ImageSize,
		})
	}
	for _, m := range req.Materials {
		product.Materials = append(product.Materials, models.ProductMaterial{Material: m})
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.GetProduct(strconv.FormatUint(uint64(product.ID), 10))
}

func (s *CatalogService) UpdateProduct(id uint, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
		slug, err := utils.UniqueProductSlug(s.db, *req.Name, id)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug: %w", err)
		}
		updates["slug"] = slug
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Manufacturer != nil {
		updates["manufacturer"] = *req.Manufacturer
	}
	if req.ProductSummary != nil {
		updates["product_summary"] = *req.ProductSummary
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CareGuide != nil {
		updates["care_guide"] = *req.CareGuide
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetProduct(strconv.FormatUint(uint64(id), 10))
}

// DeleteProduct removes the product with its variants, images and materials.
// Order snapshots are unaffected; they carry their own copies.
func (s *CatalogService) DeleteProduct(id uint) error {
	var product models.Product
	if err := s.db.Preload("Images").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return fmt.Errorf("database error: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductMaterial{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Wishlist{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	// Blob cleanup is best-effort; a leaked object must not fail the delete.
	if s.storage != nil {
		for _, img := range product.Images {
			if err := s.storage.DeleteImage(img.ImageURL); err != nil {
				logrus.WithError(err).WithField("image_url", img.ImageURL).
					Warn("Failed to delete product image from storage")
			}
		}
	}

	return nil
}
