// internal/models/catalog.go
package models

type Product struct {
	BaseModel
	Name           string `json:"name" gorm:"size:255;not null"`
	Slug           string `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	SKU            string `json:"sku" gorm:"size:255;not null"`
	Category       string `json:"category" gorm:"size:255;index"`
	Manufacturer   string `json:"manufacturer" gorm:"size:255"`
	ProductSummary string `json:"product_summary" gorm:"type:text"`
	Description    string `json:"description" gorm:"type:text"`
	CareGuide      string `json:"care_guide" gorm:"type:text"`
	IsActive       bool   `json:"is_active" gorm:"default:true;index"`
	IsFeatured     bool   `json:"is_featured" gorm:"default:false"`

	// Relationships
	Variants  []ProductVariant  `json:"variants,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images    []ProductImage    `json:"images,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Materials []ProductMaterial `json:"materials,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// ProductVariant is the purchasable unit: it carries the price and the
// authoritative stock count.
type ProductVariant struct {
	BaseModel
	ProductID     uint   `json:"product_id" gorm:"not null;index"`
	SKU           string `json:"sku" gorm:"uniqueIndex;size:255;not null"`
	Size          string `json:"size" gorm:"size:50"`
	Color         string `json:"color" gorm:"size:100"`
	RegularPrice  int    `json:"regular_price" gorm:"not null"`
	DiscountPrice *int   `json:"discount_price"`
	Stock         int    `json:"stock" gorm:"not null;default:0"`
	ImageURL      string `json:"image_url" gorm:"size:512"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type ProductImage struct {
	BaseModel
	ProductID uint   `json:"product_id" gorm:"not null;index"`
	ImageURL  string `json:"image_url" gorm:"size:512;not null"`
	ImageName string `json:"image_name" gorm:"size:255"`
	ImageSize int    `json:"image_size"`
}

type ProductMaterial struct {
	BaseModel
	ProductID uint   `json:"product_id" gorm:"not null;index"`
	Material  string `json:"material" gorm:"size:100;not null"`
}

// EffectivePrice is the price a sale would use right now: the discount
// price when one is set, the regular price otherwise.
func (v *ProductVariant) EffectivePrice() int {
	if v.DiscountPrice != nil {
		return *v.DiscountPrice
	}
	return v.RegularPrice
}

// DisplayImage prefers the variant's own image and falls back to the parent
// product's first image.
func (v *ProductVariant) DisplayImage() string {
	if v.ImageURL != "" {
		return v.ImageURL
	}
	if len(v.Product.Images) > 0 {
		return v.Product.Images[0].ImageURL
	}
	return ""
}
