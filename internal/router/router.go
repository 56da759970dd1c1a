package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wuwumall/wuwumall-backend/config"
	"github.com/wuwumall/wuwumall-backend/internal/app/controller"
	"github.com/wuwumall/wuwumall-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	productController *controller.ProductController
	cartController    *controller.CartController
	orderController   *controller.OrderController
	addressController *controller.AddressController
	sellerController  *controller.SellerController
	exportController  *controller.ExportController
	uploadController  *controller.UploadController
	wsController      *controller.WSController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	addressController *controller.AddressController,
	sellerController *controller.SellerController,
	exportController *controller.ExportController,
	uploadController *controller.UploadController,
	wsController *controller.WSController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		productController: productController,
		cartController:    cartController,
		orderController:   orderController,
		addressController: addressController,
		sellerController:  sellerController,
		exportController:  exportController,
		uploadController:  uploadController,
		wsController:      wsController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     r.config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "WuwuMall API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/reset-password", r.authController.ResetPassword)
			auth.GET("/remembered", r.authController.Remembered)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.POST("/heartbeat", r.authMiddleware.Authenticate(), r.authController.Heartbeat)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.List)
			products.GET("/:id", r.productController.Get)

			products.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequirePermission("manage_products"),
				r.productController.Create,
			)
			products.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequirePermission("manage_products"),
				r.productController.Update,
			)
			products.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequirePermission("manage_products"),
				r.productController.Delete,
			)
		}

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.Get)
			cart.POST("", r.authMiddleware.RequirePermission("add_to_cart"), r.cartController.Add)
			cart.PUT("/:productId", r.cartController.UpdateQuantity)
			cart.DELETE("/:productId", r.cartController.Remove)
			cart.DELETE("", r.cartController.Clear)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.List)
			orders.GET("/:id", r.orderController.Get)
			orders.POST("", r.authMiddleware.RequirePermission("place_order"), r.orderController.Checkout)
			orders.PUT("/:id/cancel", r.orderController.Cancel)
		}

		addresses := v1.Group("/addresses")
		addresses.Use(r.authMiddleware.Authenticate())
		{
			addresses.GET("", r.addressController.List)
			addresses.POST("", r.addressController.Create)
			addresses.PUT("/:id", r.addressController.Update)
			addresses.DELETE("/:id", r.addressController.Delete)
			addresses.PUT("/:id/default", r.addressController.SetDefault)
		}

		export := v1.Group("/export")
		export.Use(r.authMiddleware.Authenticate())
		{
			export.GET("", r.exportController.Export)
			export.POST("/import", r.exportController.Import)
		}

		seller := v1.Group("/seller")
		seller.Use(r.authMiddleware.Authenticate())
		{
			seller.GET("/stats",
				r.authMiddleware.RequirePermission("view_all_orders"),
				r.sellerController.Stats,
			)
			seller.GET("/customers",
				r.authMiddleware.RequirePermission("manage_users"),
				r.sellerController.Customers,
			)
			seller.GET("/orders",
				r.authMiddleware.RequirePermission("view_all_orders"),
				r.orderController.ListAll,
			)
			seller.PUT("/orders/:id/status",
				r.authMiddleware.RequirePermission("view_all_orders"),
				r.orderController.UpdateStatus,
			)
			seller.GET("/export/products",
				r.authMiddleware.RequirePermission("manage_products"),
				r.sellerController.ExportProducts,
			)
			seller.GET("/export/orders",
				r.authMiddleware.RequirePermission("view_all_orders"),
				r.sellerController.ExportOrders,
			)
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("/presign",
				r.authMiddleware.RequirePermission("manage_products"),
				r.uploadController.Presign,
			)
		}

		v1.GET("/ws", r.authMiddleware.Authenticate(), r.wsController.Connect)
	}

	return router
}
