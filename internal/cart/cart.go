// Package cart holds pre-checkout product selections.
package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/sahilkr01/drcuberstore/internal/model"
)

// GSTPercent is the tax applied on top of the subtotal
const GSTPercent = 18

var (
	ErrNotInCart       = errors.New("product not in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Line is a product snapshot and how many of it are wanted
type Line struct {
	model.Product
	Quantity int `json:"quantity"`
}

// Total returns price times quantity
func (l Line) Total() int64 {
	return l.Price * int64(l.Quantity)
}

// Summary is the price breakdown shown before checkout
type Summary struct {
	Items        int   `json:"items"`
	Subtotal     int64 `json:"subtotal"`
	Shipping     int64 `json:"shipping"`
	FreeShipping bool  `json:"freeShipping"`
	Tax          int64 `json:"tax"`
	Total        int64 `json:"total"`
}

// Cart keeps at most one line per product id
type Cart struct {
	checkout     sync.Mutex
	mu           sync.RWMutex
	lines        []Line
	version      uint64
	pendingOrder string
	pendingAt    uint64
	touched      time.Time
}

// New creates an empty cart
func New() *Cart {
	return &Cart{touched: time.Now()}
}

// Add puts qty of product in the cart, increasing an existing line
func (c *Cart) Add(product model.Product, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.changed()

	for i := range c.lines {
		if c.lines[i].ID == product.ID {
			c.lines[i].Quantity += qty
			return nil
		}
	}
	c.lines = append(c.lines, Line{Product: product, Quantity: qty})
	return nil
}

// UpdateQuantity sets the quantity of a line. A quantity below 1 removes the line.
func (c *Cart) UpdateQuantity(productID string, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return ErrNotInCart
	}
	if qty < 1 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	} else {
		c.lines[i].Quantity = qty
	}
	c.changed()
	return nil
}

// Remove drops the line of productID
func (c *Cart) Remove(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return ErrNotInCart
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.changed()
	return nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.changed()
}

// Lines returns a copy of the cart lines
func (c *Cart) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Line{}, c.lines...)
}

// Empty reports whether the cart has no lines
func (c *Cart) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines) == 0
}

// TotalPrice returns the sum of price times quantity over all lines
func (c *Cart) TotalPrice() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total int64
	for _, l := range c.lines {
		total += l.Total()
	}
	return total
}

// TotalItems returns the number of units in the cart
func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Summary computes the price breakdown. Shipping is free; GST is rounded half up.
func (c *Cart) Summary() Summary {
	subtotal := c.TotalPrice()
	tax := (subtotal*GSTPercent + 50) / 100
	return Summary{
		Items:        c.TotalItems(),
		Subtotal:     subtotal,
		FreeShipping: true,
		Tax:          tax,
		Total:        subtotal + tax,
	}
}

// Snapshot is the cart contents read under a single lock. Pending is the order
// already submitted for exactly these contents.
type Snapshot struct {
	Lines   []Line
	Total   int64
	Version uint64
	Pending string
}

// Snapshot returns a consistent view of the lines, their total and the pending order
func (c *Cart) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{Lines: append([]Line{}, c.lines...), Version: c.version}
	for _, l := range c.lines {
		snap.Total += l.Total()
	}
	if c.pendingOrder != "" && c.pendingAt == c.version {
		snap.Pending = c.pendingOrder
	}
	return snap
}

// OrderItems freezes the snapshot lines into order items
func (s Snapshot) OrderItems() []model.OrderItem {
	items := make([]model.OrderItem, 0, len(s.Lines))
	for _, l := range s.Lines {
		items = append(items, model.OrderItem{
			ProductID: l.ID,
			Name:      l.Name,
			Image:     l.Image,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	return items
}

// OrderItems freezes the current lines into order items
func (c *Cart) OrderItems() []model.OrderItem {
	return c.Snapshot().OrderItems()
}

// PendingOrder returns the order already submitted for the current contents
func (c *Cart) PendingOrder() (string, bool) {
	pending := c.Snapshot().Pending
	return pending, pending != ""
}

// SetPendingOrder remembers that orderID was submitted for the contents at version.
// It reports false when the cart changed since.
func (c *Cart) SetPendingOrder(orderID string, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		return false
	}
	c.pendingOrder = orderID
	c.pendingAt = version
	return true
}

// LockCheckout serializes checkouts of this cart. Edits are not blocked.
// Call the returned func to release.
func (c *Cart) LockCheckout() func() {
	c.checkout.Lock()
	return c.checkout.Unlock
}

func (c *Cart) touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = time.Now()
}

func (c *Cart) lastUsed() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.touched
}

// changed must be called with the lock held
func (c *Cart) changed() {
	c.version++
	c.touched = time.Now()
}

func (c *Cart) indexOf(productID string) int {
	for i, l := range c.lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}
