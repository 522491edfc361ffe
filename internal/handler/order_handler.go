package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/internal/orders"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"go.uber.org/zap"
)

// OrderHandler serves order tracking and the admin order desk
type OrderHandler struct {
	Orders *orders.Store
}

// StatusRequest moves an order to a new status
type StatusRequest struct {
	Status model.OrderStatus `json:"status"`
	Note   string            `json:"note"`
}

// CancelRequest carries the customer's contact and an optional cancellation reason
type CancelRequest struct {
	Contact string `json:"contact"`
	Reason  string `json:"reason"`
}

// TrackingRequest sets a tracking number
type TrackingRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

// DeliveryRequest sets an estimated delivery date
type DeliveryRequest struct {
	EstimatedDelivery string `json:"estimatedDelivery"`
}

// ListOrders returns orders filtered by status and search term, newest first
func (h *OrderHandler) ListOrders(c echo.Context) error {
	status := model.OrderStatus(c.QueryParam("status"))
	if status != "" && !model.IsValidStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	list := h.Orders.Filter(status, c.QueryParam("q"))
	return c.JSON(http.StatusOK, echo.Map{
		"orders": list,
		"count":  len(list),
		"counts": h.Orders.CountByStatus(),
	})
}

// CreateOrder records an order entered by the admin
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	log := logger.FromEcho(c)

	var draft model.OrderDraft
	if err := c.Bind(&draft); err != nil {
		log.Warn("Failed to parse order", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	o, err := h.Orders.Create(c.Request().Context(), draft)
	if err != nil {
		return h.fail(c, log, err, "failed to create order")
	}

	log.Info("Order created", zap.String("order_id", o.ID))
	return c.JSON(http.StatusCreated, o)
}

// customerOrder returns the order only when contact is the email or phone it was placed
// with. A mismatch looks the same as a missing order.
func (h *OrderHandler) customerOrder(id, contact string) (model.Order, bool) {
	o, ok := h.Orders.GetByID(id)
	if !ok || !orders.MatchesContact(o, contact) {
		return model.Order{}, false
	}
	return o, true
}

// AdminGetOrder returns one order
func (h *OrderHandler) AdminGetOrder(c echo.Context) error {
	o, ok := h.Orders.GetByID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, o)
}

// GetOrder returns one order to the customer who placed it, identified by the contact query parameter
func (h *OrderHandler) GetOrder(c echo.Context) error {
	o, ok := h.customerOrder(c.Param("id"), c.QueryParam("contact"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, o)
}

// Timeline returns the tracking view of one order to the customer who placed it
func (h *OrderHandler) Timeline(c echo.Context) error {
	o, ok := h.customerOrder(c.Param("id"), c.QueryParam("contact"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, orders.BuildTimeline(o))
}

// UserOrders returns the orders of one customer to the admin
func (h *OrderHandler) UserOrders(c echo.Context) error {
	list := h.Orders.GetByUserID(c.Param("userId"))
	return c.JSON(http.StatusOK, echo.Map{
		"orders": list,
		"count":  len(list),
	})
}

// UpdateStatus moves an order forward
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	log := logger.FromEcho(c)

	var req StatusRequest
	if err := c.Bind(&req); err != nil || !model.IsValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	o, err := h.Orders.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status, req.Note)
	if err != nil {
		return h.fail(c, log, err, "failed to update order status")
	}

	log.Info("Order status updated",
		zap.String("order_id", o.ID),
		zap.String("status", string(o.Status)))
	return c.JSON(http.StatusOK, o)
}

// CancelOrder cancels an order that has not shipped yet. The customer proves the
// order is theirs with its contact email or phone.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	log := logger.FromEcho(c)

	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if _, ok := h.customerOrder(c.Param("id"), req.Contact); !ok {
		log.Warn("Cancel rejected, contact does not match", zap.String("order_id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	o, err := h.Orders.Cancel(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return h.fail(c, log, err, "failed to cancel order")
	}

	log.Info("Order cancelled", zap.String("order_id", o.ID))
	return c.JSON(http.StatusOK, o)
}

// AdminCancelOrder cancels any order that has not shipped yet
func (h *OrderHandler) AdminCancelOrder(c echo.Context) error {
	log := logger.FromEcho(c)

	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	o, err := h.Orders.Cancel(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return h.fail(c, log, err, "failed to cancel order")
	}

	log.Info("Order cancelled by admin", zap.String("order_id", o.ID))
	return c.JSON(http.StatusOK, o)
}

// UpdateTracking sets the tracking number
func (h *OrderHandler) UpdateTracking(c echo.Context) error {
	log := logger.FromEcho(c)

	var req TrackingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	o, err := h.Orders.UpdateTracking(c.Request().Context(), c.Param("id"), req.TrackingNumber)
	if err != nil {
		return h.fail(c, log, err, "failed to update tracking number")
	}
	return c.JSON(http.StatusOK, o)
}

// UpdateDelivery sets the estimated delivery date
func (h *OrderHandler) UpdateDelivery(c echo.Context) error {
	log := logger.FromEcho(c)

	var req DeliveryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	o, err := h.Orders.UpdateEstimatedDelivery(c.Request().Context(), c.Param("id"), req.EstimatedDelivery)
	if err != nil {
		return h.fail(c, log, err, "failed to update delivery date")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) fail(c echo.Context, log *zap.Logger, err error, msg string) error {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, orders.ErrInvalidOrder):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, orders.ErrInvalidTransition), errors.Is(err, orders.ErrCancelNotAllowed):
		log.Warn("Order change rejected", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return storageFailure(c, log, err, msg)
	}
}
