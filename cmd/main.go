package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sahilkr01/drcuberstore/internal/auth"
	"github.com/sahilkr01/drcuberstore/internal/cart"
	"github.com/sahilkr01/drcuberstore/internal/catalog"
	"github.com/sahilkr01/drcuberstore/internal/checkout"
	"github.com/sahilkr01/drcuberstore/internal/handler"
	"github.com/sahilkr01/drcuberstore/internal/kvstore"
	mid "github.com/sahilkr01/drcuberstore/internal/middleware"
	"github.com/sahilkr01/drcuberstore/internal/notify"
	"github.com/sahilkr01/drcuberstore/internal/orders"
	"github.com/sahilkr01/drcuberstore/internal/tab"
	"github.com/sahilkr01/drcuberstore/pkg/config"
	"github.com/sahilkr01/drcuberstore/pkg/database"
	"github.com/sahilkr01/drcuberstore/pkg/jwtutil"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"github.com/sahilkr01/drcuberstore/pkg/metrics"
	"go.uber.org/zap"
)

const serviceName = "drcuber-store"

func main() {
	// Load configuration
	appConfig, err := config.Load(serviceName)
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: serviceName,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("Starting "+serviceName, appConfig.LogConfig()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistent store and cross-tab notifier
	store, notifier, err := openStorage(ctx, appConfig, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	t := tab.New(store, notifier, log)
	defer t.Close()
	log.Info("Tab opened", zap.String("tab_id", t.ID()))

	authService, err := auth.New(ctx, t, appConfig.Auth, log)
	if err != nil {
		log.Fatal("Failed to restore admin session", zap.Error(err))
	}
	products, err := catalog.New(ctx, t, log)
	if err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err))
	}
	orderStore, err := orders.New(ctx, t, log)
	if err != nil {
		log.Fatal("Failed to load orders", zap.Error(err))
	}

	carts := cart.NewRegistry(appConfig.Store.CartTTL, log)
	go carts.Run(ctx, time.Minute)

	checkoutService := checkout.NewService(checkout.StoreIntake{Orders: orderStore}, appConfig.Store.InstagramURL, log)

	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: appConfig.JWT.SigningKey})
	httpMetrics := metrics.NewHTTPMetrics(appConfig.Metrics.Prefix)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	healthHandler := &handler.HealthHandler{ServiceName: serviceName}
	authHandler := &handler.AuthHandler{Auth: authService, JWT: jwtUtil}
	productHandler := &handler.ProductHandler{Catalog: products}
	orderHandler := &handler.OrderHandler{Orders: orderStore}
	cartHandler := &handler.CartHandler{Carts: carts, Catalog: products, Service: checkoutService}
	publicEvents := &handler.EventsHandler{Notifier: notifier, Exposure: handler.PublicExposure}
	adminEvents := &handler.EventsHandler{Notifier: notifier, Exposure: handler.AdminExposure, Sessions: authService}

	// Routes
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))
	e.GET("/health", healthHandler.HealthCheck)

	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	e.GET("/api/products", productHandler.ListProducts)
	e.GET("/api/products/:id", productHandler.GetProduct)

	e.GET("/api/orders/:id", orderHandler.GetOrder)
	e.GET("/api/orders/:id/timeline", orderHandler.Timeline)
	e.POST("/api/orders/:id/cancel", orderHandler.CancelOrder)

	cartAPI := e.Group("/api/carts")
	cartAPI.POST("", cartHandler.CreateCart)
	cartAPI.GET("/:id", cartHandler.GetCart)
	cartAPI.DELETE("/:id", cartHandler.ClearCart)
	cartAPI.POST("/:id/items", cartHandler.AddItem)
	cartAPI.PUT("/:id/items/:productId", cartHandler.UpdateQuantity)
	cartAPI.DELETE("/:id/items/:productId", cartHandler.RemoveItem)
	cartAPI.POST("/:id/checkout", cartHandler.Checkout)

	e.GET("/api/events", publicEvents.Stream)

	// Admin API routes - token must belong to the active admin session
	adminAPI := e.Group("/api/admin", mid.AdminAuth(jwtUtil, authService))
	adminAPI.GET("/me", authHandler.Me)
	adminAPI.GET("/events", adminEvents.Stream)
	adminAPI.PUT("/password", authHandler.ChangePassword)
	adminAPI.GET("/products/stats", productHandler.Stats)
	adminAPI.POST("/products", productHandler.CreateProduct)
	adminAPI.PUT("/products/:id", productHandler.UpdateProduct)
	adminAPI.DELETE("/products/:id", productHandler.DeleteProduct)
	adminAPI.GET("/orders", orderHandler.ListOrders)
	adminAPI.POST("/orders", orderHandler.CreateOrder)
	adminAPI.GET("/orders/:id", orderHandler.AdminGetOrder)
	adminAPI.POST("/orders/:id/cancel", orderHandler.AdminCancelOrder)
	adminAPI.GET("/users/:userId/orders", orderHandler.UserOrders)
	adminAPI.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	adminAPI.PUT("/orders/:id/tracking", orderHandler.UpdateTracking)
	adminAPI.PUT("/orders/:id/delivery", orderHandler.UpdateDelivery)

	// Start server
	port := appConfig.Server.Port
	go func() {
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}

// openStorage returns the configured store and the notifier that fans its writes out to tabs
func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (kvstore.Store, notify.Notifier, error) {
	hub := notify.NewHub()

	if cfg.Storage.Driver == config.StorageMemory {
		log.Info("Using in-memory storage", zap.Int64("quota_bytes", cfg.Storage.QuotaBytes))
		return kvstore.NewMemory(cfg.Storage.QuotaBytes), hub, nil
	}

	db, err := database.InitDB(&cfg.DB, log)
	if err != nil {
		return nil, nil, err
	}
	store := kvstore.NewGorm(db, cfg.Storage.QuotaBytes, log)
	if err := store.Migrate(); err != nil {
		return nil, nil, err
	}
	log.Info("Database connection established")

	bridge := notify.NewPostgresBridge(hub, db, store, cfg.DB.GetDSN(), cfg.Storage.NotifyChannel, cfg.Storage.InstanceID, log)
	go func() {
		if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Notification listener stopped", zap.Error(err))
		}
	}()
	log.Info("Listening for storage notifications",
		zap.String("channel", cfg.Storage.NotifyChannel),
		zap.String("instance", bridge.Instance()))
	return store, bridge, nil
}
