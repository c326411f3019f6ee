// internal/services/cart_service_test.go
package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/nickopusan/caufi-backend/internal/models"
)

type CartServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *CartService
	user    *models.User
}

func (suite *CartServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewCartService(suite.db)
	suite.user = createTestUser(suite.T(), suite.db, "cart@example.com")
}

func (suite *CartServiceTestSuite) TestAddItemCreatesCartAndLine() {
	product := createTestProduct(suite.T(), suite.db, "Linen Dress",
		testVariantSpec{Size: "M", Color: "Black", RegularPrice: 250000, Stock: 10})
	variant := product.Variants[0]

	item, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{
		VariantID: variant.ID,
		Quantity:  2,
	})
	suite.NoError(err)
	suite.Equal(2, item.Quantity)
	suite.Equal(250000, item.Price)
	suite.Equal("Linen Dress", item.Variant.Product.Name)

	var cartCount int64
	suite.db.Model(&models.Cart{}).Where("user_id = ?", suite.user.ID).Count(&cartCount)
	suite.EqualValues(1, cartCount)
}

func (suite *CartServiceTestSuite) TestAddItemMergesExistingLine() {
	product := createTestProduct(suite.T(), suite.db, "Silk Blouse",
		testVariantSpec{Size: "S", Color: "Ivory", RegularPrice: 180000, Stock: 10})
	variant := product.Variants[0]

	_, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{VariantID: variant.ID, Quantity: 2})
	suite.NoError(err)

	item, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{VariantID: variant.ID, Quantity: 3})
	suite.NoError(err)
	suite.Equal(5, item.Quantity)

	// Merging must never leave duplicate rows for the same variant.
	var lineCount int64
	suite.db.Model(&models.CartItem{}).Where("variant_id = ?", variant.ID).Count(&lineCount)
	suite.EqualValues(1, lineCount)
}

func (suite *CartServiceTestSuite) TestConcurrentAddsMergeIntoOneLine() {
	product := createTestProduct(suite.T(), suite.db, "Rib Knit Top",
		testVariantSpec{Size: "M", Color: "Sage", RegularPrice: 150000, Stock: 20})
	variant := product.Variants[0]

	const adders = 8
	errs := make([]error, adders)
	var wg sync.WaitGroup
	for i := 0; i < adders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = suite.service.AddItem(suite.user.ID, &AddCartItemRequest{VariantID: variant.ID, Quantity: 1})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		suite.NoError(err)
	}

	// All racing adds collapse onto a single line with the summed quantity.
	var items []models.CartItem
	suite.NoError(suite.db.Where("variant_id = ?", variant.ID).Find(&items).Error)
	suite.Len(items, 1)
	suite.Equal(adders, items[0].Quantity)
}

func (suite *CartServiceTestSuite) TestAddItemRejectsMergedQuantityOverStock() {
	product := createTestProduct(suite.T(), suite.db, "Wool Coat",
		testVariantSpec{Size: "L", Color: "Camel", RegularPrice: 900000, Stock: 3})
	variant := product.Variants[0]

	_, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{VariantID: variant.ID, Quantity: 2})
	suite.NoError(err)

	_, err = suite.service.AddItem(suite.user.ID, &AddCartItemRequest{VariantID: variant.ID, Quantity: 2})
	suite.ErrorIs(err, ErrStockExceeded)

	// The failed add must not touch the existing line.
	view, err := suite.service.GetCart(suite.user.ID)
	suite.NoError(err)
	suite.Len(view.Items, 1)
	suite.Equal(2, view.Items[0].Quantity)
}

func (suite *CartServiceTestSuite) TestAddItemUnknownVariant() {
	_, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{VariantID: 9999, Quantity: 1})
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *CartServiceTestSuite) TestAddItemInactiveProduct() {
	product := createTestProduct(suite.T(), suite.db, "Retired Skirt",
		testVariantSpec{Size: "M", Color: "Navy", RegularPrice: 150000, Stock: 5})
	suite.NoError(suite.db.Model(product).Update("is_active", false).Error)

	_, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{
		VariantID: product.Variants[0].ID,
		Quantity:  1,
	})
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *CartServiceTestSuite) TestAddItemRejectsNonPositiveQuantity() {
	product := createTestProduct(suite.T(), suite.db, "Denim Jacket",
		testVariantSpec{Size: "M", Color: "Blue", RegularPrice: 400000, Stock: 5})

	_, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{
		VariantID: product.Variants[0].ID,
		Quantity:  0,
	})
	suite.ErrorIs(err, ErrValidation)
}

func (suite *CartServiceTestSuite) TestUpdateItemOverwritesQuantity() {
	product := createTestProduct(suite.T(), suite.db, "Pleated Skirt",
		testVariantSpec{Size: "S", Color: "Green", RegularPrice: 220000, Stock: 10})
	variant := product.Variants[0]

	_, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{VariantID: variant.ID, Quantity: 4})
	suite.NoError(err)

	view, err := suite.service.UpdateItem(suite.user.ID, &UpdateCartItemRequest{VariantID: variant.ID, Quantity: 1})
	suite.NoError(err)
	suite.Len(view.Items, 1)
	suite.Equal(1, view.Items[0].Quantity)
}

func (suite *CartServiceTestSuite) TestUpdateItemToZeroDeletesLine() {
	product := createTestProduct(suite.T(), suite.db, "Knit Sweater",
		testVariantSpec{Size: "M", Color: "Grey", RegularPrice: 320000, Stock: 10})
	variant := product.Variants[0]

	_, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{VariantID: variant.ID, Quantity: 2})
	suite.NoError(err)

	view, err := suite.service.UpdateItem(suite.user.ID, &UpdateCartItemRequest{VariantID: variant.ID, Quantity: 0})
	suite.NoError(err)
	suite.Empty(view.Items)
}

func (suite *CartServiceTestSuite) TestUpdateItemNotInCart() {
	product := createTestProduct(suite.T(), suite.db, "Satin Scarf",
		testVariantSpec{Size: "One", Color: "Red", RegularPrice: 90000, Stock: 10})
	other := createTestProduct(suite.T(), suite.db, "Leather Belt",
		testVariantSpec{Size: "One", Color: "Brown", RegularPrice: 110000, Stock: 10})

	_, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{
		VariantID: product.Variants[0].ID, Quantity: 1,
	})
	suite.NoError(err)

	_, err = suite.service.UpdateItem(suite.user.ID, &UpdateCartItemRequest{
		VariantID: other.Variants[0].ID, Quantity: 2,
	})
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *CartServiceTestSuite) TestRemoveItemScopedToOwnCart() {
	product := createTestProduct(suite.T(), suite.db, "Maxi Dress",
		testVariantSpec{Size: "M", Color: "Floral", RegularPrice: 275000, Stock: 10})

	item, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{
		VariantID: product.Variants[0].ID, Quantity: 1,
	})
	suite.NoError(err)

	stranger := createTestUser(suite.T(), suite.db, "stranger@example.com")
	_, err = suite.service.AddItem(stranger.ID, &AddCartItemRequest{
		VariantID: product.Variants[0].ID, Quantity: 1,
	})
	suite.NoError(err)

	// A foreign item id must not be removable through another user's cart.
	_, err = suite.service.RemoveItem(stranger.ID, item.ID)
	suite.ErrorIs(err, ErrNotFound)

	removed, err := suite.service.RemoveItem(suite.user.ID, item.ID)
	suite.NoError(err)
	suite.Equal(item.ID, removed.ID)

	view, err := suite.service.GetCart(suite.user.ID)
	suite.NoError(err)
	suite.Empty(view.Items)
}

func (suite *CartServiceTestSuite) TestClearCart() {
	first := createTestProduct(suite.T(), suite.db, "Trench Coat",
		testVariantSpec{Size: "M", Color: "Beige", RegularPrice: 750000, Stock: 10})
	second := createTestProduct(suite.T(), suite.db, "Ankle Boots",
		testVariantSpec{Size: "38", Color: "Black", RegularPrice: 650000, Stock: 10})

	for _, v := range []uint{first.Variants[0].ID, second.Variants[0].ID} {
		_, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{VariantID: v, Quantity: 1})
		suite.NoError(err)
	}

	suite.NoError(suite.service.ClearCart(suite.user.ID))

	view, err := suite.service.GetCart(suite.user.ID)
	suite.NoError(err)
	suite.Empty(view.Items)
}

func (suite *CartServiceTestSuite) TestGetCartTotalsUseLivePrice() {
	product := createTestProduct(suite.T(), suite.db, "Midi Dress",
		testVariantSpec{Size: "M", Color: "Rust", RegularPrice: 300000, Stock: 10})
	variant := product.Variants[0]

	_, err := suite.service.AddItem(suite.user.ID, &AddCartItemRequest{VariantID: variant.ID, Quantity: 2})
	suite.NoError(err)

	// A discount applied after the add shows up in the cart total.
	suite.NoError(suite.db.Model(&models.ProductVariant{}).
		Where("id = ?", variant.ID).
		Update("discount_price", 240000).Error)

	view, err := suite.service.GetCart(suite.user.ID)
	suite.NoError(err)
	suite.Equal(2, view.TotalItems)
	suite.Equal(480000, view.CartTotal)
}

func (suite *CartServiceTestSuite) TestGetCartWithoutCartIsEmpty() {
	view, err := suite.service.GetCart(suite.user.ID)
	suite.NoError(err)
	suite.Empty(view.Items)
	suite.Zero(view.TotalItems)
	suite.Zero(view.CartTotal)
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}
