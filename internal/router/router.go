// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/nickopusan/caufi-backend/internal/config"
	"github.com/nickopusan/caufi-backend/internal/handlers"
	"github.com/nickopusan/caufi-backend/internal/middleware"
	"github.com/nickopusan/caufi-backend/internal/services"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	var imageStorage services.ImageStorage
	if storageService, err := services.NewStorageService(cfg); err != nil {
		logrus.WithError(err).Warn("Object storage unavailable, image cleanup disabled")
	} else {
		imageStorage = storageService
	}
	paymentService := services.NewPaymentService(cfg)

	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db, paymentService)
	catalogService := services.NewCatalogService(db, imageStorage)
	wishlistService := services.NewWishlistService(db)

	// Initialize handlers
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	productHandler := handlers.NewProductHandler(catalogService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Catalog routes (public; token only enriches the request log)
		products := v1.Group("/products")
		products.Use(middleware.OptionalAuth())
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/featured", productHandler.GetFeaturedProducts)
			products.GET("/:idOrSlug", productHandler.GetProduct)
		}

		// Cart routes
		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired())
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("/add", cartHandler.AddItem)
			cart.PATCH("/update", cartHandler.UpdateItem)
			cart.DELETE("/clear", cartHandler.ClearCart)
			cart.DELETE("/:itemId", cartHandler.RemoveItem)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", middleware.CheckoutRateLimit(), orderHandler.CreateOrder)
			orders.GET("/me", orderHandler.GetMyOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/pay", middleware.PaymentRateLimit(), orderHandler.PayOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
		}

		// Wishlist routes
		wishlist := v1.Group("/wishlist")
		wishlist.Use(middleware.AuthRequired())
		{
			wishlist.GET("", wishlistHandler.GetWishlist)
			wishlist.POST("", wishlistHandler.AddToWishlist)
			wishlist.DELETE("/:productId", wishlistHandler.RemoveFromWishlist)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.POST("/products", productHandler.CreateProduct)
			admin.PUT("/products/:id", productHandler.UpdateProduct)
			admin.DELETE("/products/:id", productHandler.DeleteProduct)
			admin.PATCH("/orders/:id/status", orderHandler.UpdateOrderStatus)
		}
	}

	return r
}
