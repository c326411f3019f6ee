// internal/services/wishlist_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nickopusan/caufi-backend/internal/models"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

type WishlistService struct {
	db *gorm.DB
}

func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

func (s *WishlistService) Add(userID, productID uint) (*models.Wishlist, error) {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing models.Wishlist
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: product already in wishlist", ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	entry := models.Wishlist{UserID: userID, ProductID: productID}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}

	if err := s.db.Preload("Product.Images").Preload("Product.Materials").
		First(&entry, entry.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload wishlist entry: %w", err)
	}
	return &entry, nil
}

func (s *WishlistService) Remove(userID, productID uint) error {
	res := s.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Wishlist{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product not in wishlist", ErrNotFound)
	}
	return nil
}

func (s *WishlistService) List(userID uint, params utils.PaginationParams) ([]models.Wishlist, int64, error) {
	query := s.db.Model(&models.Wishlist{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wishlist: %w", err)
	}

	var entries []models.Wishlist
	if err := utils.ApplyPagination(query, params).
		Preload("Product.Images").Preload("Product.Materials").
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch wishlist: %w", err)
	}

	return entries, total, nil
}
