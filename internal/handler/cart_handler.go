package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sahilkr01/drcuberstore/internal/cart"
	"github.com/sahilkr01/drcuberstore/internal/catalog"
	"github.com/sahilkr01/drcuberstore/internal/checkout"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"go.uber.org/zap"
)

// CartHandler serves shopping carts and the Instagram checkout
type CartHandler struct {
	Carts   *cart.Registry
	Catalog *catalog.Catalog
	Service *checkout.Service
}

// AddItemRequest puts a catalog product in a cart
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// QuantityRequest sets the quantity of a line
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CheckoutRequest carries the delivery form. Clipboard is false when the
// browser could not write to the clipboard.
type CheckoutRequest struct {
	checkout.DeliveryDetails
	Clipboard *bool `json:"clipboard"`
}

// CreateCart opens an empty cart
func (h *CartHandler) CreateCart(c echo.Context) error {
	id, ct := h.Carts.Create()
	return c.JSON(http.StatusCreated, cartView(id, ct))
}

// GetCart returns the lines and price summary of a cart
func (h *CartHandler) GetCart(c echo.Context) error {
	ct, ok := h.Carts.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart not found"})
	}
	return c.JSON(http.StatusOK, cartView(c.Param("id"), ct))
}

// AddItem adds a product from the catalog. Quantity defaults to one.
func (h *CartHandler) AddItem(c echo.Context) error {
	ct, ok := h.Carts.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart not found"})
	}

	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, ok := h.Catalog.Get(req.ProductID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	if err := ct.Add(p, req.Quantity); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, cartView(c.Param("id"), ct))
}

// UpdateQuantity sets a line's quantity. Less than one removes the line.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ct, ok := h.Carts.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart not found"})
	}

	var req QuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := ct.UpdateQuantity(c.Param("productId"), req.Quantity); err != nil {
		return cartFailure(c, err)
	}
	return c.JSON(http.StatusOK, cartView(c.Param("id"), ct))
}

// RemoveItem drops a line
func (h *CartHandler) RemoveItem(c echo.Context) error {
	ct, ok := h.Carts.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart not found"})
	}
	if err := ct.Remove(c.Param("productId")); err != nil {
		return cartFailure(c, err)
	}
	return c.JSON(http.StatusOK, cartView(c.Param("id"), ct))
}

// ClearCart empties a cart
func (h *CartHandler) ClearCart(c echo.Context) error {
	ct, ok := h.Carts.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart not found"})
	}
	ct.Clear()
	return c.JSON(http.StatusOK, cartView(c.Param("id"), ct))
}

// Checkout composes the Instagram order message. The cart is emptied only when
// the client copied the text.
func (h *CartHandler) Checkout(c echo.Context) error {
	log := logger.FromEcho(c)

	ct, ok := h.Carts.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart not found"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var clip checkout.Clipboard = &checkout.Buffer{}
	if req.Clipboard != nil && !*req.Clipboard {
		clip = checkout.DeniedClipboard{}
	}

	res, err := h.Service.Checkout(c.Request().Context(), ct, req.DeliveryDetails, clip)
	switch {
	case errors.Is(err, checkout.ErrMissingFields):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": checkout.MsgMissingFields})
	case errors.Is(err, checkout.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case err != nil:
		return storageFailure(c, log, err, "checkout failed")
	}

	log.Info("Checkout composed",
		zap.String("cart_id", c.Param("id")),
		zap.String("order_id", res.OrderID),
		zap.Bool("copied", res.Copied))
	return c.JSON(http.StatusOK, res)
}

func cartView(id string, ct *cart.Cart) echo.Map {
	return echo.Map{
		"id":      id,
		"items":   ct.Lines(),
		"summary": ct.Summary(),
	}
}

func cartFailure(c echo.Context, err error) error {
	if errors.Is(err, cart.ErrNotInCart) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
}
