// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nickopusan/caufi-backend/internal/models"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

type OrderService struct {
	db     *gorm.DB
	bridge PaymentBridge
}

type OrderItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	VariantID uint `json:"variant_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	AddressID uint               `json:"address_id" validate:"required"`
	Items     []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func NewOrderService(db *gorm.DB, bridge PaymentBridge) *OrderService {
	return &OrderService{db: db, bridge: bridge}
}

// CreateOrder validates the candidate order against current catalog state,
// snapshots the line items and decrements stock, all inside one transaction.
// Any validation failure aborts before mutation; there is no partial order.
func (s *OrderService) CreateOrder(userID uint, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var orderID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 1. Address must belong to the requesting user.
		var address models.UserAddress
		if err := tx.Where("id = ? AND user_id = ?", req.AddressID, userID).
			First(&address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: address does not belong to user", ErrInvalidAddress)
			}
			return fmt.Errorf("database error: %w", err)
		}

		// 2. Batch-load every referenced variant with its parent product.
		variantIDs := make([]uint, 0, len(req.Items))
		for _, item := range req.Items {
			variantIDs = append(variantIDs, item.VariantID)
		}

		var variants []models.ProductVariant
		if err := tx.Preload("Product.Images").
			Where("id IN ?", variantIDs).
			Find(&variants).Error; err != nil {
			return fmt.Errorf("failed to load variants: %w", err)
		}

		variantByID := make(map[uint]*models.ProductVariant, len(variants))
		for i := range variants {
			variantByID[variants[i].ID] = &variants[i]
		}

		// 3. Validate every line before touching anything.
		totalAmount := 0
		orderItems := make([]models.OrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			variant, ok := variantByID[item.VariantID]
			if !ok {
				return fmt.Errorf("%w: variant %d not found", ErrInvalidItem, item.VariantID)
			}
			if variant.ProductID != item.ProductID {
				return fmt.Errorf("%w: variant %d does not belong to product %d",
					ErrInvalidItem, item.VariantID, item.ProductID)
			}
			if !variant.Product.IsActive {
				return fmt.Errorf("%w: product %q is not available", ErrInvalidItem, variant.Product.Name)
			}
			if variant.Stock < item.Quantity {
				return fmt.Errorf("%w: %q has only %d in stock",
					ErrInsufficientStock, variant.Product.Name, variant.Stock)
			}

			price := variant.EffectivePrice()
			totalAmount += price * item.Quantity
			orderItems = append(orderItems, models.OrderItem{
				VariantID:       variant.ID,
				ProductName:     variant.Product.Name,
				ImageURL:        variant.DisplayImage(),
				PriceAtPurchase: price,
				Quantity:        item.Quantity,
			})
		}

		// 4. Persist the order and its snapshot items.
		order := models.Order{
			UserID:      userID,
			AddressID:   req.AddressID,
			Status:      models.OrderStatusPending,
			TotalAmount: totalAmount,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}

		// 5. Decrement stock with a relative, conditional update so a
		// concurrent checkout for the same variant can never drive stock
		// negative. Zero rows affected means someone got there first.
		for _, item := range req.Items {
			res := tx.Model(&models.ProductVariant{}).
				Where("id = ? AND stock >= ?", item.VariantID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to update stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				variant := variantByID[item.VariantID]
				return fmt.Errorf("%w: %q sold out while ordering",
					ErrInsufficientStock, variant.Product.Name)
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(orderID, userID)
}

// PayOrder builds a provider transaction from the order snapshot and
// forwards it to the payment bridge. A bridge failure leaves the order
// pending so payment can be retried.
func (s *OrderService) PayOrder(orderID, userID uint) (*PaymentResult, error) {
	order, err := s.GetOrder(orderID, userID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is %s, only pending orders can be paid",
			ErrInvalidState, order.Status)
	}

	payment, err := s.bridge.CreateTransaction(order)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	// Persist the correlation fields without touching the status; the
	// status only moves on the provider callback.
	updates := map[string]interface{}{
		"payment_order_ref": payment.OrderRef,
		"payment_token":     payment.Token,
		"redirect_url":      payment.RedirectURL,
	}
	if err := s.db.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to store payment reference: %w", err)
	}

	return payment, nil
}

// CancelOrder moves a pending order to cancelled and restores the stock the
// order had reserved.
func (s *OrderService) CancelOrder(orderID, userID uint) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").
			Where("id = ? AND user_id = ?", orderID, userID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order not found", ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !order.CanTransitionTo(models.OrderStatusCancelled) {
			return fmt.Errorf("%w: order is %s, only pending orders can be cancelled",
				ErrInvalidState, order.Status)
		}

		// Flip the status conditionally before touching stock: of two
		// concurrent cancels, only the one that wins this update may
		// restore, so the inventory can never be credited twice.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return fmt.Errorf("failed to cancel order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order is no longer pending", ErrInvalidState)
		}

		for _, item := range order.Items {
			if err := tx.Model(&models.ProductVariant{}).
				Where("id = ?", item.VariantID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(orderID, userID)
}

// UpdateStatus applies an admin/provider-driven lifecycle transition.
func (s *OrderService) UpdateStatus(orderID uint, next models.OrderStatus) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !order.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s",
			ErrInvalidState, order.Status, next)
	}

	updates := map[string]interface{}{"status": next}
	if next == models.OrderStatusConfirmed {
		now := time.Now()
		updates["paid_at"] = &now
	}
	// Guard against a concurrent transition between the read and the write.
	res := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, order.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: order left %s concurrently", ErrInvalidState, order.Status)
	}

	return s.GetOrder(orderID, order.UserID)
}

// GetOrder loads one order with user, address and snapshot items.
func (s *OrderService) GetOrder(orderID, userID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("User").Preload("Address").Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

func (s *OrderService) GetUserOrders(userID uint, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	if err := utils.ApplyPagination(query, params).
		Preload("Address").Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}
