package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sahilkr01/drcuberstore/internal/auth"
	"github.com/sahilkr01/drcuberstore/internal/cart"
	"github.com/sahilkr01/drcuberstore/internal/catalog"
	"github.com/sahilkr01/drcuberstore/internal/checkout"
	"github.com/sahilkr01/drcuberstore/internal/kvstore"
	mid "github.com/sahilkr01/drcuberstore/internal/middleware"
	"github.com/sahilkr01/drcuberstore/internal/notify"
	"github.com/sahilkr01/drcuberstore/internal/orders"
	"github.com/sahilkr01/drcuberstore/internal/tab"
	"github.com/sahilkr01/drcuberstore/pkg/config"
	"github.com/sahilkr01/drcuberstore/pkg/jwtutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminPassword = "drcuber@2026"

type testServer struct {
	e       *echo.Echo
	hub     *notify.Hub
	store   *kvstore.Memory
	catalog *catalog.Catalog
	orders  *orders.Store
	carts   *cart.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	store := kvstore.NewMemory(0)
	hub := notify.NewHub()
	t.Cleanup(hub.Close)
	tb := tab.New(store, hub, log)
	t.Cleanup(tb.Close)

	authService, err := auth.New(ctx, tb, config.AuthConfig{
		DefaultPassword:   adminPassword,
		SessionTTL:        time.Hour,
		MinPasswordLength: 6,
	}, log)
	require.NoError(t, err)
	products, err := catalog.New(ctx, tb, log)
	require.NoError(t, err)
	orderStore, err := orders.New(ctx, tb, log)
	require.NoError(t, err)
	carts := cart.NewRegistry(time.Hour, log)
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-key"})

	authHandler := &AuthHandler{Auth: authService, JWT: jwtUtil}
	productHandler := &ProductHandler{Catalog: products}
	orderHandler := &OrderHandler{Orders: orderStore}
	cartHandler := &CartHandler{
		Carts:   carts,
		Catalog: products,
		Service: checkout.NewService(checkout.StoreIntake{Orders: orderStore}, "https://www.instagram.com/drcuberofficial/", log),
	}
	publicEvents := &EventsHandler{Notifier: hub, Exposure: PublicExposure, KeepAlive: time.Hour}
	adminEvents := &EventsHandler{Notifier: hub, Exposure: AdminExposure, Sessions: authService, KeepAlive: time.Hour}

	e := echo.New()
	e.Use(mid.RequestIDMiddleware)
	e.GET("/health", (&HealthHandler{ServiceName: "drcuber-store"}).HealthCheck)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/api/products", productHandler.ListProducts)
	e.GET("/api/products/:id", productHandler.GetProduct)
	e.GET("/api/orders/:id", orderHandler.GetOrder)
	e.GET("/api/orders/:id/timeline", orderHandler.Timeline)
	e.POST("/api/orders/:id/cancel", orderHandler.CancelOrder)
	e.POST("/api/carts", cartHandler.CreateCart)
	e.GET("/api/carts/:id", cartHandler.GetCart)
	e.DELETE("/api/carts/:id", cartHandler.ClearCart)
	e.POST("/api/carts/:id/items", cartHandler.AddItem)
	e.PUT("/api/carts/:id/items/:productId", cartHandler.UpdateQuantity)
	e.DELETE("/api/carts/:id/items/:productId", cartHandler.RemoveItem)
	e.POST("/api/carts/:id/checkout", cartHandler.Checkout)
	e.GET("/api/events", publicEvents.Stream)

	admin := e.Group("/api/admin", mid.AdminAuth(jwtUtil, authService))
	admin.GET("/me", authHandler.Me)
	admin.GET("/events", adminEvents.Stream)
	admin.PUT("/password", authHandler.ChangePassword)
	admin.GET("/products/stats", productHandler.Stats)
	admin.POST("/products", productHandler.CreateProduct)
	admin.PUT("/products/:id", productHandler.UpdateProduct)
	admin.DELETE("/products/:id", productHandler.DeleteProduct)
	admin.GET("/orders", orderHandler.ListOrders)
	admin.POST("/orders", orderHandler.CreateOrder)
	admin.GET("/orders/:id", orderHandler.AdminGetOrder)
	admin.POST("/orders/:id/cancel", orderHandler.AdminCancelOrder)
	admin.GET("/users/:userId/orders", orderHandler.UserOrders)
	admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	admin.PUT("/orders/:id/tracking", orderHandler.UpdateTracking)
	admin.PUT("/orders/:id/delivery", orderHandler.UpdateDelivery)

	return &testServer{e: e, hub: hub, store: store, catalog: products, orders: orderStore, carts: carts}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "", `{"password":"`+adminPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
