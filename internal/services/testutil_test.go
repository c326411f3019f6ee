// internal/services/testutil_test.go
package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nickopusan/caufi-backend/internal/models"
)

var testDBCounter int64

// newTestDB opens an isolated in-memory database with the full schema.
// The DSN is unique per call so suites never share state; cache=shared with
// a single connection keeps the database alive across gorm's pool.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared",
		atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.UserAddress{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductImage{},
		&models.ProductMaterial{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Wishlist{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Name:        "Test Shopper",
		Email:       email,
		PhoneNumber: "081234567890",
		IsActive:    true,
	}
	require.NoError(t, user.SetPassword("TestPass123!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestAddress(t *testing.T, db *gorm.DB, userID uint) *models.UserAddress {
	t.Helper()

	address := &models.UserAddress{
		UserID:        userID,
		RecipientName: "Test Shopper",
		AddressLine1:  "Jl. Sudirman No. 1",
		City:          "Jakarta",
		Province:      "DKI Jakarta",
		PostalCode:    "10110",
		Phone:         "081234567890",
		IsDefault:     true,
	}
	require.NoError(t, db.Create(address).Error)
	return address
}

type testVariantSpec struct {
	Size          string
	Color         string
	RegularPrice  int
	DiscountPrice *int
	Stock         int
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, variants ...testVariantSpec) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:     name,
		Slug:     fmt.Sprintf("%s-%d", name, atomic.AddInt64(&testDBCounter, 1)),
		SKU:      fmt.Sprintf("SKU%d", atomic.AddInt64(&testDBCounter, 1)),
		Category: "Dresses",
		IsActive: true,
	}
	for i, spec := range variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			SKU:           fmt.Sprintf("VAR%d-%d", atomic.AddInt64(&testDBCounter, 1), i),
			Size:          spec.Size,
			Color:         spec.Color,
			RegularPrice:  spec.RegularPrice,
			DiscountPrice: spec.DiscountPrice,
			Stock:         spec.Stock,
		})
	}
	product.Images = []models.ProductImage{
		{ImageURL: "https://assets.test/" + name + ".jpg", ImageName: name + ".jpg"},
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func intPtr(v int) *int {
	return &v
}
