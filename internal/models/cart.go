// internal/models/cart.go
package models

type Cart struct {
	BaseModel
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`

	Items []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem holds one line per (cart, variant). The composite unique index is
// what lets concurrent adds merge through an ON CONFLICT upsert instead of
// racing into duplicate rows.
type CartItem struct {
	BaseModel
	CartID    uint `json:"cart_id" gorm:"not null;uniqueIndex:uix_cart_variant"`
	VariantID uint `json:"variant_id" gorm:"not null;uniqueIndex:uix_cart_variant"`
	Quantity  int  `json:"quantity" gorm:"not null"`
	// Price at the time the line was added, for display only. Cart totals
	// and checkout always re-read the live variant price.
	Price int `json:"price" gorm:"not null"`

	Variant ProductVariant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
}
