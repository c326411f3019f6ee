// internal/models/order.go
package models

import "time"

type Order struct {
	BaseModel
	UserID      uint        `json:"user_id" gorm:"not null;index"`
	AddressID   uint        `json:"address_id" gorm:"not null"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	TotalAmount int         `json:"total_amount" gorm:"not null"`

	// Payment correlation, populated when payment is initiated.
	PaymentOrderRef string     `json:"payment_order_ref,omitempty" gorm:"size:64;index"`
	PaymentToken    string     `json:"payment_token,omitempty" gorm:"size:255"`
	RedirectURL     string     `json:"redirect_url,omitempty" gorm:"size:512"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`

	// Relationships
	User    User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Address UserAddress `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	Items   []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is an immutable snapshot of what was sold: name, image and unit
// price are captured at purchase time and never re-read from the catalog.
// The variant reference is informational only.
type OrderItem struct {
	BaseModel
	OrderID         uint   `json:"order_id" gorm:"not null;index"`
	VariantID       uint   `json:"variant_id" gorm:"not null"`
	ProductName     string `json:"product_name" gorm:"size:255;not null"`
	ImageURL        string `json:"image_url" gorm:"size:512"`
	PriceAtPurchase int    `json:"price_at_purchase" gorm:"not null"`
	Quantity        int    `json:"quantity" gorm:"not null"`
}

// CanTransitionTo reports whether the order lifecycle allows moving from the
// current status to next. pending -> confirmed -> shipped -> delivered;
// pending may be cancelled; anything paid may be refunded.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	allowed, ok := orderTransitions[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == next {
			return true
		}
	}
	return false
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusRefunded},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusRefunded},
	OrderStatusDelivered: {OrderStatusRefunded},
}
