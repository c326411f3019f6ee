// internal/models/wishlist.go
package models

type Wishlist struct {
	BaseModel
	UserID    uint `json:"user_id" gorm:"not null;uniqueIndex:uix_wishlist_user_product"`
	ProductID uint `json:"product_id" gorm:"not null;uniqueIndex:uix_wishlist_user_product"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
