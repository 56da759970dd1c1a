package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wuwumall/wuwumall-backend/config"
	"github.com/wuwumall/wuwumall-backend/internal/app/controller"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/internal/app/service"
	"github.com/wuwumall/wuwumall-backend/internal/events"
	"github.com/wuwumall/wuwumall-backend/internal/middleware"
	"github.com/wuwumall/wuwumall-backend/internal/router"
	"github.com/wuwumall/wuwumall-backend/internal/scheduler"
	"github.com/wuwumall/wuwumall-backend/internal/session"
	"github.com/wuwumall/wuwumall-backend/internal/storage"
	"github.com/wuwumall/wuwumall-backend/internal/store"
	ws "github.com/wuwumall/wuwumall-backend/internal/websocket"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting WuwuMall Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Open the document store. SQL failures fall back to the file
	// backend inside Open, so a missing database never blocks startup.
	docStore, err := store.Open(&cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to open document store", err)
	}
	defer func() {
		if err := docStore.Close(); err != nil {
			logger.Error("Failed to close document store", err)
		}
	}()
	logger.Info("Document store ready", map[string]interface{}{
		"backend": docStore.Backend(),
	})

	// Session backend: Redis when configured, in-process memory otherwise
	var sessionBackend session.Backend
	if cfg.Redis.Enabled {
		sessionBackend, err = session.NewRedisBackend(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory sessions", map[string]interface{}{
				"error": err.Error(),
			})
			sessionBackend = session.NewMemoryBackend()
		}
	} else {
		sessionBackend = session.NewMemoryBackend()
	}
	defer func() {
		if err := sessionBackend.Close(); err != nil {
			logger.Error("Failed to close session backend", err)
		}
	}()

	bus := events.NewBus()
	sessions := session.NewManager(sessionBackend, &cfg.Session, bus)

	// Initialize repositories
	userRepo := repository.NewUserRepository(docStore)
	productRepo := repository.NewProductRepository(docStore)
	cartRepo := repository.NewCartRepository(docStore)
	orderRepo := repository.NewOrderRepository(docStore)
	addressRepo := repository.NewAddressRepository(docStore)
	activityRepo := repository.NewActivityRepository(docStore)

	// The cart keeps a file-backed mirror so its contents survive a SQL
	// outage. When the primary already is the file store no mirror is
	// needed.
	var cartMirrorRepo repository.CartRepository
	if docStore.Backend() == "sql" {
		mirrorStore, err := store.OpenFileStore(cfg.Storage.DataDir)
		if err != nil {
			logger.Warn("Cart mirror unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			cartMirrorRepo = repository.NewCartRepository(mirrorStore)
			defer mirrorStore.Close()
		}
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, addressRepo, activityRepo, sessions, bus)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, cartMirrorRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartService, activityRepo, bus)
	addressService := service.NewAddressService(addressRepo)
	sellerService := service.NewSellerService(orderRepo, productRepo, userRepo)
	exportService := service.NewExportService(userRepo, cartRepo, orderRepo, addressRepo)

	s3Storage := storage.NewS3Storage(&cfg.S3)

	// WebSocket hub pushes bus events to connected browsers
	hub := ws.NewHub()
	hub.BindBus(bus)
	go hub.Run()

	// Initialize controllers
	authController := controller.NewAuthController(authService, sessions, &cfg.JWT)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	addressController := controller.NewAddressController(addressService)
	sellerController := controller.NewSellerController(sellerService)
	exportController := controller.NewExportController(exportService)
	uploadController := controller.NewUploadController(s3Storage)
	wsController := controller.NewWSController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, sessions, authService)

	// Background session sweep and activity log trim
	sessionScheduler := scheduler.NewSessionScheduler(sessions, activityRepo, &cfg.Session)
	if err := sessionScheduler.Start(); err != nil {
		logger.Fatal("Failed to start session scheduler", err)
	}
	defer sessionScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		cartController,
		orderController,
		addressController,
		sellerController,
		exportController,
		uploadController,
		wsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": server.Addr,
			"pid":     os.Getpid(),
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
