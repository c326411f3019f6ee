// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nickopusan/caufi-backend/internal/models"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

type CartService struct {
	db *gorm.DB
}

type AddCartItemRequest struct {
	VariantID uint `json:"variant_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	VariantID uint `json:"variant_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"min=0"`
}

type CartView struct {
	Items      []models.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	CartTotal  int               `json:"cart_total"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// AddItem merges the quantity into the user's cart line for the variant,
// creating the cart and the line as needed. The stock check is soft: it
// stops obviously oversized carts but availability is only guaranteed at
// checkout.
func (s *CartService) AddItem(userID uint, req *AddCartItemRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var item *models.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.getOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		variant, err := s.loadVariant(tx, req.VariantID)
		if err != nil {
			return err
		}

		var existingQuantity int64
		if err := tx.Model(&models.CartItem{}).
			Select("COALESCE(SUM(quantity), 0)").
			Where("cart_id = ? AND variant_id = ?", cart.ID, variant.ID).
			Scan(&existingQuantity).Error; err != nil {
			return fmt.Errorf("failed to read cart quantity: %w", err)
		}

		if int(existingQuantity)+req.Quantity > variant.Stock {
			return fmt.Errorf("%w: only %d in stock", ErrStockExceeded, variant.Stock)
		}

		// Insert-or-merge under the (cart_id, variant_id) unique index so a
		// concurrent add for the same variant lands on the same row.
		line := models.CartItem{
			CartID:    cart.ID,
			VariantID: variant.ID,
			Quantity:  req.Quantity,
			Price:     variant.EffectivePrice(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "variant_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + ?", req.Quantity),
				"price":    variant.EffectivePrice(),
			}),
		}).Create(&line).Error; err != nil {
			return fmt.Errorf("failed to upsert cart item: %w", err)
		}

		var out models.CartItem
		if err := tx.Preload("Variant.Product.Images").
			Where("cart_id = ? AND variant_id = ?", cart.ID, variant.ID).
			First(&out).Error; err != nil {
			return fmt.Errorf("failed to reload cart item: %w", err)
		}
		item = &out
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// UpdateItem overwrites the line quantity; zero deletes the line.
func (s *CartService) UpdateItem(userID uint, req *UpdateCartItemRequest) (*CartView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.getCart(tx, userID)
		if err != nil {
			return err
		}

		var item models.CartItem
		if err := tx.Where("cart_id = ? AND variant_id = ?", cart.ID, req.VariantID).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: item not in cart", ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if req.Quantity == 0 {
			return tx.Delete(&item).Error
		}

		variant, err := s.loadVariant(tx, req.VariantID)
		if err != nil {
			return err
		}
		if req.Quantity > variant.Stock {
			return fmt.Errorf("%w: only %d in stock", ErrStockExceeded, variant.Stock)
		}

		return tx.Model(&item).Update("quantity", req.Quantity).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

func (s *CartService) RemoveItem(userID, itemID uint) (*models.CartItem, error) {
	cart, err := s.getCart(s.db, userID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	if err := s.db.Preload("Variant.Product.Images").
		Where("id = ? AND cart_id = ?", itemID, cart.ID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart item not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Delete(&models.CartItem{}, item.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return &item, nil
}

func (s *CartService) ClearCart(userID uint) error {
	cart, err := s.getCart(s.db, userID)
	if err != nil {
		return err
	}

	if err := s.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// GetCart returns all lines with resolved variant/product data. The cart
// total is live-priced from the variant's effective price at read time,
// unlike order snapshots.
func (s *CartService) GetCart(userID uint) (*CartView, error) {
	var cart models.Cart
	if err := s.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CartView{Items: []models.CartItem{}}, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var items []models.CartItem
	if err := s.db.Preload("Variant.Product.Images").
		Where("cart_id = ?", cart.ID).
		Order("id").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cart items: %w", err)
	}

	view := &CartView{Items: items}
	for _, item := range items {
		view.TotalItems += item.Quantity
		view.CartTotal += item.Quantity * item.Variant.EffectivePrice()
	}

	return view, nil
}

// Helper methods

func (s *CartService) getOrCreateCart(tx *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	cart = models.Cart{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	if cart.ID == 0 {
		// Lost the race to a concurrent first add; the row exists now.
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
	}
	return &cart, nil
}

func (s *CartService) getCart(tx *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &cart, nil
}

func (s *CartService) loadVariant(tx *gorm.DB, variantID uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := tx.Preload("Product").First(&variant, variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product variant not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if variant.Product.ID == 0 || !variant.Product.IsActive {
		return nil, fmt.Errorf("%w: product not found or unavailable", ErrNotFound)
	}
	return &variant, nil
}
