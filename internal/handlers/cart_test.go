// internal/handlers/cart_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nickopusan/caufi-backend/internal/middleware"
	"github.com/nickopusan/caufi-backend/internal/models"
	"github.com/nickopusan/caufi-backend/internal/services"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

var handlerDBCounter int64

type CartHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	router  *gin.Engine
	user    *models.User
	token   string
	variant *models.ProductVariant
}

func (suite *CartHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlertest%d?mode=memory&cache=shared",
		atomic.AddInt64(&handlerDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductImage{},
		&models.Cart{},
		&models.CartItem{},
	))
	suite.db = db

	suite.user = &models.User{Name: "Test Shopper", Email: "cart@example.com", IsActive: true}
	suite.Require().NoError(suite.user.SetPassword("TestPass123!"))
	suite.Require().NoError(db.Create(suite.user).Error)

	product := &models.Product{
		Name:     "Linen Dress",
		Slug:     "linen-dress",
		SKU:      "PRODSKU00001",
		Category: "Dresses",
		IsActive: true,
		Variants: []models.ProductVariant{
			{SKU: "VARSKU000001", Size: "M", Color: "Black", RegularPrice: 250000, Stock: 3},
		},
	}
	suite.Require().NoError(db.Create(product).Error)
	suite.variant = &product.Variants[0]

	utils.SetJWTSecret("handler-test-secret")
	token, err := utils.GenerateJWT(suite.user.ID, suite.user.Email, false, 1)
	suite.Require().NoError(err)
	suite.token = token

	cartHandler := NewCartHandler(services.NewCartService(db))

	suite.router = gin.New()
	cart := suite.router.Group("/v1/cart")
	cart.Use(middleware.AuthRequired())
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/add", cartHandler.AddItem)
		cart.PATCH("/update", cartHandler.UpdateItem)
	}
}

func (suite *CartHandlerTestSuite) request(method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+suite.token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *CartHandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (suite *CartHandlerTestSuite) TestAddItemRequiresAuth() {
	w := suite.request(http.MethodPost, "/v1/cart/add",
		gin.H{"variant_id": suite.variant.ID, "quantity": 1}, false)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *CartHandlerTestSuite) TestAddItemCreated() {
	w := suite.request(http.MethodPost, "/v1/cart/add",
		gin.H{"variant_id": suite.variant.ID, "quantity": 2}, true)
	suite.Equal(http.StatusCreated, w.Code)

	response := suite.decode(w)
	suite.True(response["success"].(bool))
	data := response["data"].(map[string]interface{})
	suite.EqualValues(2, data["quantity"])
}

func (suite *CartHandlerTestSuite) TestAddItemStockExceededCode() {
	w := suite.request(http.MethodPost, "/v1/cart/add",
		gin.H{"variant_id": suite.variant.ID, "quantity": 2}, true)
	suite.Equal(http.StatusCreated, w.Code)

	// Stock is 3, the merged quantity of 4 must be rejected.
	w = suite.request(http.MethodPost, "/v1/cart/add",
		gin.H{"variant_id": suite.variant.ID, "quantity": 2}, true)
	suite.Equal(http.StatusBadRequest, w.Code)

	response := suite.decode(w)
	suite.False(response["success"].(bool))
	errObj := response["error"].(map[string]interface{})
	suite.Equal("STOCK_EXCEEDED", errObj["code"])
	suite.Contains(errObj["message"], "only 3 in stock")
}

func (suite *CartHandlerTestSuite) TestAddItemUnknownVariantIs404() {
	w := suite.request(http.MethodPost, "/v1/cart/add",
		gin.H{"variant_id": 9999, "quantity": 1}, true)
	suite.Equal(http.StatusNotFound, w.Code)

	response := suite.decode(w)
	errObj := response["error"].(map[string]interface{})
	suite.Equal("NOT_FOUND", errObj["code"])
}

func (suite *CartHandlerTestSuite) TestGetCartTotals() {
	w := suite.request(http.MethodPost, "/v1/cart/add",
		gin.H{"variant_id": suite.variant.ID, "quantity": 2}, true)
	suite.Equal(http.StatusCreated, w.Code)

	w = suite.request(http.MethodGet, "/v1/cart", nil, true)
	suite.Equal(http.StatusOK, w.Code)

	response := suite.decode(w)
	data := response["data"].(map[string]interface{})
	suite.EqualValues(2, data["total_items"])
	suite.EqualValues(500000, data["cart_total"])
}

func (suite *CartHandlerTestSuite) TestUpdateItemToZeroEmptiesCart() {
	w := suite.request(http.MethodPost, "/v1/cart/add",
		gin.H{"variant_id": suite.variant.ID, "quantity": 1}, true)
	suite.Equal(http.StatusCreated, w.Code)

	w = suite.request(http.MethodPatch, "/v1/cart/update",
		gin.H{"variant_id": suite.variant.ID, "quantity": 0}, true)
	suite.Equal(http.StatusOK, w.Code)

	response := suite.decode(w)
	data := response["data"].(map[string]interface{})
	suite.Empty(data["items"])
}

func TestCartHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerTestSuite))
}
