// Package checkout hands a cart off to the store's Instagram account: it composes the
// order text, copies it for the customer and points them at the profile.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilkr01/drcuberstore/internal/cart"
	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/internal/orders"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"github.com/sahilkr01/drcuberstore/prometheus"
	"go.uber.org/zap"
)

// Messages shown to the customer
const (
	MsgMissingFields = "Please fill in all required fields"
	MsgCopied        = "Order details copied to clipboard! Please paste this message when you reach our Instagram page."
	MsgCopyManually  = "Please copy the order details manually and send them to @drcuberofficial on Instagram."
)

var (
	ErrMissingFields   = errors.New("missing required delivery fields")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrClipboardDenied = errors.New("clipboard access denied")
)

// DeliveryDetails are the fields the customer fills in at checkout
type DeliveryDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Email   string `json:"email,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// Validate checks that name, phone, address and city are present
func (d DeliveryDetails) Validate() error {
	for _, v := range []string{d.Name, d.Phone, d.Address, d.City} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingFields
		}
	}
	return nil
}

// Clipboard receives the composed text
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// OrderIntake records a checkout as an order and returns its id
type OrderIntake interface {
	Submit(ctx context.Context, draft model.OrderDraft) (string, error)
}

// StoreIntake submits checkouts to the order store
type StoreIntake struct {
	Orders *orders.Store
}

// Submit creates a pending order from draft
func (s StoreIntake) Submit(ctx context.Context, draft model.OrderDraft) (string, error) {
	o, err := s.Orders.Create(ctx, draft)
	if err != nil {
		return "", err
	}
	return o.ID, nil
}

// Result tells the client what to do next
type Result struct {
	Copied  bool   `json:"copied"`
	Message string `json:"message"`
	Text    string `json:"text"`
	OpenURL string `json:"openUrl,omitempty"`
	OrderID string `json:"orderId,omitempty"`
}

// Service performs checkouts. A nil intake keeps the hand-off purely manual.
type Service struct {
	intake     OrderIntake
	profileURL string
	log        *zap.Logger
}

// NewService creates a checkout service that sends customers to profileURL
func NewService(intake OrderIntake, profileURL string, log *zap.Logger) *Service {
	return &Service{intake: intake, profileURL: profileURL, log: log}
}

// Checkout composes the hand-off for c. The cart is cleared only once the text was copied;
// when the clipboard is denied the cart is kept and the text is returned for manual copying.
// Checkouts of one cart run one at a time, so a cart yields at most one order per contents.
func (s *Service) Checkout(ctx context.Context, c *cart.Cart, d DeliveryDetails, clip Clipboard) (Result, error) {
	unlock := c.LockCheckout()
	defer unlock()

	snap := c.Snapshot()
	if len(snap.Lines) == 0 {
		return Result{}, ErrEmptyCart
	}
	if err := d.Validate(); err != nil {
		prometheus.RecordCheckout("invalid")
		return Result{}, err
	}

	orderID, err := s.submit(ctx, c, snap, d)
	if err != nil {
		return Result{}, err
	}

	text := ComposeMessage(snap.Lines, snap.Total, d, orderID)
	if err := clip.WriteText(ctx, text); err != nil {
		if !errors.Is(err, ErrClipboardDenied) {
			return Result{}, fmt.Errorf("failed to copy order details: %w", err)
		}
		prometheus.RecordCheckout("clipboard_denied")
		logger.Scoped(ctx, s.log).Info("Clipboard denied, returning order details for manual copy",
			zap.String("order_id", orderID))
		return Result{Message: MsgCopyManually, Text: text, OrderID: orderID}, nil
	}

	c.Clear()
	prometheus.RecordCheckout("copied")
	return Result{
		Copied:  true,
		Message: MsgCopied,
		Text:    text,
		OpenURL: s.profileURL,
		OrderID: orderID,
	}, nil
}

// submit records the order once per cart contents, so a retry after a denied
// clipboard does not create a second order
func (s *Service) submit(ctx context.Context, c *cart.Cart, snap cart.Snapshot, d DeliveryDetails) (string, error) {
	if s.intake == nil {
		return "", nil
	}
	if snap.Pending != "" {
		return snap.Pending, nil
	}

	id, err := s.intake.Submit(ctx, model.OrderDraft{
		UserID:    d.UserID,
		UserEmail: d.Email,
		UserName:  d.Name,
		UserPhone: d.Phone,
		Items:     snap.OrderItems(),
		ShippingAddress: model.Address{
			Street:  d.Address,
			City:    d.City,
			State:   d.State,
			ZipCode: d.ZipCode,
			Country: "India",
		},
		TotalAmount:   snap.Total,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
	})
	if err != nil {
		return "", fmt.Errorf("failed to record order: %w", err)
	}
	if !c.SetPendingOrder(id, snap.Version) {
		logger.Scoped(ctx, s.log).Warn("Cart changed during checkout", zap.String("order_id", id))
	}
	return id, nil
}

// DeniedClipboard is a Clipboard the client could not write to
type DeniedClipboard struct{}

// WriteText always fails with ErrClipboardDenied
func (DeniedClipboard) WriteText(context.Context, string) error {
	return ErrClipboardDenied
}

// Buffer is a Clipboard that keeps the text for the caller to deliver, as the HTTP
// handler does by returning it to the browser
type Buffer struct {
	Text string
}

// WriteText stores text
func (b *Buffer) WriteText(_ context.Context, text string) error {
	b.Text = text
	return nil
}
