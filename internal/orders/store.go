// Package orders keeps customer orders and enforces their status lifecycle.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/internal/notify"
	"github.com/sahilkr01/drcuberstore/internal/tab"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"github.com/sahilkr01/drcuberstore/prometheus"
	"go.uber.org/zap"
)

// DefaultCancelNote is recorded when a cancellation gives no reason
const DefaultCancelNote = "Cancelled by user"

const deliveryDateLayout = "2006-01-02"

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCancelNotAllowed  = errors.New("order can no longer be cancelled")
)

// Store holds the orders of one tab. Mutations rewrite the whole list and signal both
// the writing tab and the other tabs.
type Store struct {
	tab *tab.Tab
	log *zap.Logger
	now func() time.Time

	mu     sync.RWMutex
	orders []model.Order
}

// Option customizes a Store
type Option func(*Store)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New loads the orders, writing the sample order when none were stored
func New(ctx context.Context, t *tab.Tab, log *zap.Logger, opts ...Option) (*Store, error) {
	s := &Store{tab: t, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	raw, ok, err := t.Get(ctx, model.OrdersKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	if ok {
		orders, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to load orders: %w", err)
		}
		s.orders = orders
	} else {
		sample := SampleOrders()
		if err := s.persist(ctx, sample); err != nil {
			return nil, fmt.Errorf("failed to seed orders: %w", err)
		}
		s.orders = sample
	}

	t.Watch(model.OrdersKey, s.onChanged)
	t.Bus().On(model.OrdersUpdatedTopic, func() {
		if err := s.Refresh(context.Background()); err != nil {
			s.log.Warn("Failed to refresh orders", zap.Error(err))
		}
	})
	return s, nil
}

func decode(raw string) ([]model.Order, error) {
	var orders []model.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		return nil, fmt.Errorf("invalid order list: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (s *Store) persist(ctx context.Context, orders []model.Order) error {
	raw, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to encode orders: %w", err)
	}
	return s.tab.Set(ctx, model.OrdersKey, string(raw))
}

// List returns every order in creation order
func (s *Store) List() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.orders)
}

// GetByID returns the order with id
func (s *Store) GetByID(id string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.orders, id); i >= 0 {
		return s.orders[i].Clone(), true
	}
	return model.Order{}, false
}

// GetByUserID returns the orders placed by userID
func (s *Store) GetByUserID(userID string) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := []model.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			matched = append(matched, o.Clone())
		}
	}
	return matched
}

// Create stores a new order. The id continues the highest sequence used this year.
func (s *Store) Create(ctx context.Context, draft model.OrderDraft) (model.Order, error) {
	if draft.Status == "" {
		draft.Status = model.StatusPending
	}
	if draft.PaymentMethod == "" {
		draft.PaymentMethod = model.PaymentCOD
	}
	if draft.PaymentStatus == "" {
		draft.PaymentStatus = model.PaymentPending
	}
	if draft.TotalAmount == 0 {
		draft.TotalAmount = draft.ItemsTotal()
	}
	if err := validateDraft(draft); err != nil {
		prometheus.RecordOrderRejection("invalid_order")
		return model.Order{}, err
	}

	var created model.Order
	err := s.mutate(ctx, func(orders []model.Order) ([]model.Order, error) {
		now := s.now().UTC()
		created = model.Order{
			ID:                NextID(orders, now.Year()),
			UserID:            draft.UserID,
			UserEmail:         draft.UserEmail,
			UserName:          draft.UserName,
			UserPhone:         draft.UserPhone,
			Items:             append([]model.OrderItem(nil), draft.Items...),
			TotalAmount:       draft.TotalAmount,
			ShippingAddress:   draft.ShippingAddress,
			Status:            draft.Status,
			PaymentMethod:     draft.PaymentMethod,
			PaymentStatus:     draft.PaymentStatus,
			TrackingNumber:    draft.TrackingNumber,
			EstimatedDelivery: draft.EstimatedDelivery,
			CreatedAt:         now,
			UpdatedAt:         now,
			StatusHistory:     []model.StatusChange{{Status: draft.Status, Timestamp: now}},
		}
		return append(orders, created), nil
	})
	if err != nil {
		return model.Order{}, err
	}

	prometheus.OrdersCreatedCounter.Inc()
	logger.Scoped(ctx, s.log).Info("Order created",
		zap.String("order_id", created.ID),
		zap.Int64("total_amount", created.TotalAmount))
	return created.Clone(), nil
}

// UpdateStatus moves the order to status and records it in the history
func (s *Store) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, note string) (model.Order, error) {
	return s.update(ctx, id, func(o *model.Order, now time.Time) error {
		if err := CheckTransition(o.Status, status); err != nil {
			return err
		}
		o.Status = status
		o.UpdatedAt = now
		o.StatusHistory = append(o.StatusHistory, model.StatusChange{Status: status, Timestamp: now, Note: note})
		return nil
	}, string(status))
}

// Cancel cancels a pending, confirmed or processing order
func (s *Store) Cancel(ctx context.Context, id, reason string) (model.Order, error) {
	if strings.TrimSpace(reason) == "" {
		reason = DefaultCancelNote
	}
	return s.UpdateStatus(ctx, id, model.StatusCancelled, reason)
}

// UpdateTracking sets the carrier tracking number
func (s *Store) UpdateTracking(ctx context.Context, id, trackingNumber string) (model.Order, error) {
	return s.update(ctx, id, func(o *model.Order, now time.Time) error {
		o.TrackingNumber = strings.TrimSpace(trackingNumber)
		o.UpdatedAt = now
		return nil
	}, "")
}

// UpdateEstimatedDelivery sets the expected delivery date, formatted YYYY-MM-DD
func (s *Store) UpdateEstimatedDelivery(ctx context.Context, id, date string) (model.Order, error) {
	if !isDate(date) {
		return model.Order{}, fmt.Errorf("%w: delivery date must be YYYY-MM-DD", ErrInvalidOrder)
	}
	return s.update(ctx, id, func(o *model.Order, now time.Time) error {
		o.EstimatedDelivery = date
		o.UpdatedAt = now
		return nil
	}, "")
}

// update applies fn to one order. transition labels the metric for status changes.
func (s *Store) update(ctx context.Context, id string, fn func(*model.Order, time.Time) error, transition string) (model.Order, error) {
	var updated model.Order
	err := s.mutate(ctx, func(orders []model.Order) ([]model.Order, error) {
		i := indexOf(orders, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		o := orders[i].Clone()
		if err := fn(&o, s.now().UTC()); err != nil {
			return nil, err
		}
		orders[i] = o
		updated = o
		return orders, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCancelNotAllowed):
			prometheus.RecordOrderRejection("cancel_not_allowed")
		case errors.Is(err, ErrInvalidTransition):
			prometheus.RecordOrderRejection("invalid_transition")
		}
		return model.Order{}, err
	}

	if transition != "" {
		prometheus.RecordOrderTransition(transition)
	}
	return updated.Clone(), nil
}

func (s *Store) mutate(ctx context.Context, fn func([]model.Order) ([]model.Order, error)) error {
	s.mu.Lock()
	next, err := fn(append([]model.Order(nil), s.orders...))
	if err == nil {
		err = s.persist(ctx, next)
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.orders = next
	s.mu.Unlock()

	s.tab.Bus().Emit(model.OrdersUpdatedTopic)
	return nil
}

// Refresh re-reads the orders from the store. A missing key leaves them as they are.
func (s *Store) Refresh(ctx context.Context) error {
	raw, ok, err := s.tab.Get(ctx, model.OrdersKey)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}
	if !ok {
		return nil
	}
	orders, err := decode(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
	return nil
}

func (s *Store) onChanged(ev notify.Event) {
	if ev.Removed() {
		return
	}
	orders, err := decode(*ev.NewValue)
	if err != nil {
		s.log.Warn("Ignoring unreadable order list from another tab", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
}

// CheckTransition reports whether an order may move from one status to another.
// Moves go forward along the fulfillment flow, skipping steps if needed. Cancellation
// is only possible before shipping. Delivered and cancelled orders are final.
func CheckTransition(from, to model.OrderStatus) error {
	if !model.IsValidStatus(to) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if to == model.StatusCancelled {
		if !from.Cancellable() {
			return fmt.Errorf("%w: order is %s", ErrCancelNotAllowed, from)
		}
		return nil
	}
	if from.Terminal() || to.Step() <= from.Step() {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// NextID returns the id for a new order created in year
func NextID(orders []model.Order, year int) string {
	prefix := fmt.Sprintf("ORD-%d-", year)
	highest := 0
	for _, o := range orders {
		if !strings.HasPrefix(o.ID, prefix) {
			continue
		}
		if seq, err := strconv.Atoi(strings.TrimPrefix(o.ID, prefix)); err == nil && seq > highest {
			highest = seq
		}
	}
	return fmt.Sprintf("%s%03d", prefix, highest+1)
}

func validateDraft(d model.OrderDraft) error {
	switch {
	case len(d.Items) == 0:
		return fmt.Errorf("%w: order has no items", ErrInvalidOrder)
	case !model.IsValidStatus(d.Status):
		return fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, d.Status)
	case !model.IsValidPaymentMethod(d.PaymentMethod):
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, d.PaymentMethod)
	case !model.IsValidPaymentStatus(d.PaymentStatus):
		return fmt.Errorf("%w: unknown payment status %q", ErrInvalidOrder, d.PaymentStatus)
	case d.TotalAmount < 0:
		return fmt.Errorf("%w: total must not be negative", ErrInvalidOrder)
	case d.EstimatedDelivery != "" && !isDate(d.EstimatedDelivery):
		return fmt.Errorf("%w: delivery date must be YYYY-MM-DD", ErrInvalidOrder)
	}
	for _, it := range d.Items {
		if it.Quantity < 1 || it.Price < 0 {
			return fmt.Errorf("%w: item %q has an invalid quantity or price", ErrInvalidOrder, it.ProductID)
		}
	}
	return nil
}

func isDate(s string) bool {
	_, err := time.Parse(deliveryDateLayout, s)
	return err == nil
}

func indexOf(orders []model.Order, id string) int {
	for i, o := range orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(orders []model.Order) []model.Order {
	out := make([]model.Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}
