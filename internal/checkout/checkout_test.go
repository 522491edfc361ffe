package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sahilkr01/drcuberstore/internal/cart"
	"github.com/sahilkr01/drcuberstore/internal/kvstore"
	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/internal/notify"
	"github.com/sahilkr01/drcuberstore/internal/orders"
	"github.com/sahilkr01/drcuberstore/internal/tab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const profileURL = "https://www.instagram.com/drcuberofficial/"

var details = DeliveryDetails{
	Name:    "Riya Sharma",
	Phone:   "+91 90000 00000",
	Address: "12 MG Road",
	City:    "Pune",
	State:   "Maharashtra",
	ZipCode: "411001",
}

func filledCart(t *testing.T) *cart.Cart {
	t.Helper()
	c := cart.New()
	require.NoError(t, c.Add(model.Product{ID: "2", Name: "Magnetic Cube 3x3", Price: 899}, 2))
	require.NoError(t, c.Add(model.Product{ID: "6", Name: "Fidget Cube Deluxe", Price: 199}, 1))
	return c
}

type countingIntake struct {
	mu     sync.Mutex
	calls  int
	drafts []model.OrderDraft
	err    error
	delay  time.Duration
}

func (i *countingIntake) Submit(_ context.Context, d model.OrderDraft) (string, error) {
	time.Sleep(i.delay)
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return "", i.err
	}
	i.calls++
	i.drafts = append(i.drafts, d)
	return "ORD-2026-042", nil
}

func TestComposeMessage(t *testing.T) {
	c := filledCart(t)
	text := ComposeMessage(c.Lines(), c.TotalPrice(), details, "")

	expected := "Hi! I'd like to order:\n\n" +
		"Magnetic Cube 3x3 x 2 - ₹1,798\n" +
		"Fidget Cube Deluxe x 1 - ₹199\n\n" +
		"Total: ₹1,997\n\n" +
		"Delivery Details:\n" +
		"Name: Riya Sharma\n" +
		"Phone: +91 90000 00000\n" +
		"Address: 12 MG Road, Pune, Maharashtra 411001"
	assert.Equal(t, expected, text)

	withID := ComposeMessage(c.Lines(), c.TotalPrice(), details, "ORD-2026-042")
	assert.Contains(t, withID, "Total: ₹1,997\nOrder ID: ORD-2026-042\n\nDelivery Details:")
}

func TestCheckoutCopied(t *testing.T) {
	s := NewService(nil, profileURL, zap.NewNop())
	c := filledCart(t)
	var clip Buffer

	res, err := s.Checkout(context.Background(), c, details, &clip)
	require.NoError(t, err)

	assert.True(t, res.Copied)
	assert.Equal(t, MsgCopied, res.Message)
	assert.Equal(t, profileURL, res.OpenURL)
	assert.Empty(t, res.OrderID)
	assert.Equal(t, res.Text, clip.Text)
	assert.True(t, c.Empty(), "cart is cleared after a successful copy")
}

func TestCheckoutClipboardDenied(t *testing.T) {
	intake := &countingIntake{}
	s := NewService(intake, profileURL, zap.NewNop())
	c := filledCart(t)

	res, err := s.Checkout(context.Background(), c, details, DeniedClipboard{})
	require.NoError(t, err)
	assert.False(t, res.Copied)
	assert.Equal(t, MsgCopyManually, res.Message)
	assert.Empty(t, res.OpenURL)
	assert.Contains(t, res.Text, "Hi! I'd like to order:")
	assert.False(t, c.Empty(), "cart is kept when the copy failed")

	// Retrying with the same cart reuses the recorded order
	res, err = s.Checkout(context.Background(), c, details, &Buffer{})
	require.NoError(t, err)
	assert.True(t, res.Copied)
	assert.Equal(t, "ORD-2026-042", res.OrderID)
	assert.Equal(t, 1, intake.calls)
}

func TestConcurrentCheckoutsRecordOneOrder(t *testing.T) {
	intake := &countingIntake{delay: 20 * time.Millisecond}
	s := NewService(intake, profileURL, zap.NewNop())
	c := filledCart(t)

	var wg sync.WaitGroup
	results := make([]Result, 2)
	errs := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Checkout(context.Background(), c, details, DeniedClipboard{})
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 1, intake.calls)
	assert.Equal(t, results[0].OrderID, results[1].OrderID)
	assert.Equal(t, results[0].Text, results[1].Text)
}

func TestCheckoutOrderMatchesMessage(t *testing.T) {
	intake := &countingIntake{}
	s := NewService(intake, profileURL, zap.NewNop())
	c := filledCart(t)

	res, err := s.Checkout(context.Background(), c, details, &Buffer{})
	require.NoError(t, err)
	require.Len(t, intake.drafts, 1)
	assert.Equal(t, int64(1997), intake.drafts[0].TotalAmount)
	assert.Len(t, intake.drafts[0].Items, 2)
	assert.Contains(t, res.Text, "Total: ₹1,997")
}

func TestComposeMessageKeepsQuantityUngrouped(t *testing.T) {
	c := cart.New()
	require.NoError(t, c.Add(model.Product{ID: "6", Name: "Fidget Cube Deluxe", Price: 199}, 1000))

	text := ComposeMessage(c.Lines(), c.TotalPrice(), details, "")
	assert.Contains(t, text, "Fidget Cube Deluxe x 1000 - ₹199,000")
}

func TestCheckoutRequiredFields(t *testing.T) {
	s := NewService(nil, profileURL, zap.NewNop())

	for _, mutate := range []func(*DeliveryDetails){
		func(d *DeliveryDetails) { d.Name = "" },
		func(d *DeliveryDetails) { d.Phone = " " },
		func(d *DeliveryDetails) { d.Address = "" },
		func(d *DeliveryDetails) { d.City = "" },
	} {
		d := details
		mutate(&d)
		c := filledCart(t)
		_, err := s.Checkout(context.Background(), c, d, &Buffer{})
		assert.ErrorIs(t, err, ErrMissingFields)
		assert.False(t, c.Empty())
	}

	// State and zip are optional
	d := details
	d.State, d.ZipCode = "", ""
	_, err := s.Checkout(context.Background(), filledCart(t), d, &Buffer{})
	assert.NoError(t, err)
}

func TestCheckoutEmptyCart(t *testing.T) {
	s := NewService(nil, profileURL, zap.NewNop())
	_, err := s.Checkout(context.Background(), cart.New(), details, &Buffer{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

type brokenClipboard struct{}

func (brokenClipboard) WriteText(context.Context, string) error {
	return errors.New("boom")
}

func TestCheckoutFailures(t *testing.T) {
	s := NewService(&countingIntake{err: kvstore.ErrUnavailable}, profileURL, zap.NewNop())
	c := filledCart(t)
	_, err := s.Checkout(context.Background(), c, details, &Buffer{})
	assert.ErrorIs(t, err, kvstore.ErrUnavailable)
	assert.False(t, c.Empty())

	s = NewService(nil, profileURL, zap.NewNop())
	_, err = s.Checkout(context.Background(), c, details, brokenClipboard{})
	assert.Error(t, err)
	assert.False(t, c.Empty())
}

func TestStoreIntakeCreatesPendingOrder(t *testing.T) {
	tb := tab.New(kvstore.NewMemory(0), notify.NewHub(), zap.NewNop())
	defer tb.Close()
	store, err := orders.New(context.Background(), tb, zap.NewNop())
	require.NoError(t, err)

	s := NewService(StoreIntake{Orders: store}, profileURL, zap.NewNop())
	d := details
	d.Email = "riya@example.com"
	res, err := s.Checkout(context.Background(), filledCart(t), d, &Buffer{})
	require.NoError(t, err)
	require.NotEmpty(t, res.OrderID)
	assert.Contains(t, res.Text, "Order ID: "+res.OrderID)

	o, ok := store.GetByID(res.OrderID)
	require.True(t, ok)
	assert.Equal(t, model.StatusPending, o.Status)
	assert.Equal(t, model.PaymentPending, o.PaymentStatus)
	assert.Equal(t, int64(1997), o.TotalAmount)
	assert.Equal(t, "riya@example.com", o.UserEmail)
	assert.Equal(t, "Pune", o.ShippingAddress.City)
	require.Len(t, o.Items, 2)
	assert.Equal(t, 2, o.Items[0].Quantity)
}
