// internal/services/wishlist_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/nickopusan/caufi-backend/internal/models"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

type WishlistServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *WishlistService
	user    *models.User
}

func (suite *WishlistServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewWishlistService(suite.db)
	suite.user = createTestUser(suite.T(), suite.db, "wishlist@example.com")
}

func (suite *WishlistServiceTestSuite) TestAddAndList() {
	product := createTestProduct(suite.T(), suite.db, "Linen Dress",
		testVariantSpec{Size: "M", Color: "Black", RegularPrice: 250000, Stock: 10})

	entry, err := suite.service.Add(suite.user.ID, product.ID)
	suite.NoError(err)
	suite.Equal(product.ID, entry.ProductID)

	entries, total, err := suite.service.List(suite.user.ID,
		utils.PaginationParams{Page: 1, Limit: 24})
	suite.NoError(err)
	suite.EqualValues(1, total)
	suite.Len(entries, 1)
	suite.Equal("Linen Dress", entries[0].Product.Name)
}

func (suite *WishlistServiceTestSuite) TestAddDuplicateConflicts() {
	product := createTestProduct(suite.T(), suite.db, "Silk Blouse",
		testVariantSpec{Size: "S", Color: "Ivory", RegularPrice: 180000, Stock: 10})

	_, err := suite.service.Add(suite.user.ID, product.ID)
	suite.NoError(err)

	_, err = suite.service.Add(suite.user.ID, product.ID)
	suite.ErrorIs(err, ErrConflict)
}

func (suite *WishlistServiceTestSuite) TestAddUnknownProduct() {
	_, err := suite.service.Add(suite.user.ID, 9999)
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *WishlistServiceTestSuite) TestRemove() {
	product := createTestProduct(suite.T(), suite.db, "Wool Coat",
		testVariantSpec{Size: "L", Color: "Camel", RegularPrice: 900000, Stock: 5})

	_, err := suite.service.Add(suite.user.ID, product.ID)
	suite.NoError(err)

	suite.NoError(suite.service.Remove(suite.user.ID, product.ID))
	suite.ErrorIs(suite.service.Remove(suite.user.ID, product.ID), ErrNotFound)
}

func (suite *WishlistServiceTestSuite) TestListScopedToUser() {
	product := createTestProduct(suite.T(), suite.db, "Trench Coat",
		testVariantSpec{Size: "M", Color: "Beige", RegularPrice: 750000, Stock: 5})

	stranger := createTestUser(suite.T(), suite.db, "stranger@example.com")
	_, err := suite.service.Add(stranger.ID, product.ID)
	suite.NoError(err)

	entries, total, err := suite.service.List(suite.user.ID,
		utils.PaginationParams{Page: 1, Limit: 24})
	suite.NoError(err)
	suite.Zero(total)
	suite.Empty(entries)
}

func TestWishlistServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WishlistServiceTestSuite))
}
