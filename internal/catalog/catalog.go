// Package catalog keeps the list of sellable products for one tab.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/internal/notify"
	"github.com/sahilkr01/drcuberstore/internal/tab"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"github.com/sahilkr01/drcuberstore/prometheus"
	"go.uber.org/zap"
)

// LowStockThreshold is the stock level below which a product counts as low
const LowStockThreshold = 10

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidProduct = errors.New("invalid product")
)

// Catalog is the product list of one tab. Every mutation rewrites the whole list,
// then signals the same tab on its bus; other tabs learn of it from the notifier.
type Catalog struct {
	tab   *tab.Tab
	log   *zap.Logger
	newID func() string

	mu       sync.RWMutex
	products []model.Product
}

// New loads the catalog, seeding and persisting the built-in products when none were stored
func New(ctx context.Context, t *tab.Tab, log *zap.Logger) (*Catalog, error) {
	c := &Catalog{
		tab:   t,
		log:   log,
		newID: func() string { return uuid.New().String() },
	}

	raw, ok, err := t.Get(ctx, model.ProductsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	if ok {
		products, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		c.products = products
	} else {
		seed := SeedProducts()
		if err := c.persist(ctx, seed); err != nil {
			return nil, fmt.Errorf("failed to seed products: %w", err)
		}
		c.products = seed
		log.Info("Seeded product catalog", zap.Int("count", len(seed)))
	}
	syncInventory(nil, c.products)

	t.Watch(model.ProductsKey, c.onChanged)
	t.Bus().On(model.ProductsUpdatedTopic, func() {
		if err := c.Refresh(context.Background()); err != nil {
			c.log.Warn("Failed to refresh products", zap.Error(err))
		}
	})
	return c, nil
}

func decode(raw string) ([]model.Product, error) {
	var products []model.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return nil, fmt.Errorf("invalid product list: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (c *Catalog) persist(ctx context.Context, products []model.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}
	return c.tab.Set(ctx, model.ProductsKey, string(raw))
}

// List returns a copy of the product list
func (c *Catalog) List() []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Product(nil), c.products...)
}

// Get returns the product with id
func (c *Catalog) Get(id string) (model.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// Add appends a new product with a fresh id
func (c *Catalog) Add(ctx context.Context, in model.ProductInput) (model.Product, error) {
	product := in.Product(c.newID())
	if err := Validate(product); err != nil {
		return model.Product{}, err
	}

	err := c.mutate(ctx, "add", func(products []model.Product) ([]model.Product, error) {
		return append(products, product), nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return product, nil
}

// Update applies patch to the product with id
func (c *Catalog) Update(ctx context.Context, id string, patch model.ProductPatch) (model.Product, error) {
	var updated model.Product
	err := c.mutate(ctx, "update", func(products []model.Product) ([]model.Product, error) {
		i := indexOf(products, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		updated = patch.Apply(products[i])
		if err := Validate(updated); err != nil {
			return nil, err
		}
		products[i] = updated
		return products, nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return updated, nil
}

// Remove deletes the product with id
func (c *Catalog) Remove(ctx context.Context, id string) error {
	return c.mutate(ctx, "remove", func(products []model.Product) ([]model.Product, error) {
		i := indexOf(products, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(products[:i], products[i+1:]...), nil
	})
}

// mutate runs a read-modify-write of the whole list. The cached list only changes
// once the new list is persisted.
func (c *Catalog) mutate(ctx context.Context, op string, fn func([]model.Product) ([]model.Product, error)) error {
	c.mu.Lock()
	next, err := fn(append([]model.Product(nil), c.products...))
	if err == nil {
		err = c.persist(ctx, next)
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}
	prev := c.products
	c.products = next
	c.mu.Unlock()

	syncInventory(prev, next)
	prometheus.RecordCatalogOperation(op)
	logger.Scoped(ctx, c.log).Info("Catalog updated",
		zap.String("operation", op),
		zap.Int("products", len(next)))
	c.tab.Bus().Emit(model.ProductsUpdatedTopic)
	return nil
}

// Refresh re-reads the list from the store. A missing key leaves the list as it is.
func (c *Catalog) Refresh(ctx context.Context) error {
	raw, ok, err := c.tab.Get(ctx, model.ProductsKey)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	if !ok {
		return nil
	}
	products, err := decode(raw)
	if err != nil {
		return err
	}
	c.replace(products)
	return nil
}

// onChanged replaces the list with the value written by another tab
func (c *Catalog) onChanged(ev notify.Event) {
	if ev.Removed() {
		return
	}
	products, err := decode(*ev.NewValue)
	if err != nil {
		c.log.Warn("Ignoring unreadable product list from another tab", zap.Error(err))
		return
	}
	c.replace(products)
}

func (c *Catalog) replace(products []model.Product) {
	c.mu.Lock()
	prev := c.products
	c.products = products
	c.mu.Unlock()
	syncInventory(prev, products)
}

func indexOf(products []model.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the field constraints of a product
func Validate(p model.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case !model.IsValidCategory(p.Category):
		return fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, p.Category)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case p.OriginalPrice != nil && *p.OriginalPrice < 0:
		return fmt.Errorf("%w: original price must not be negative", ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	case p.Rating < 0 || p.Rating > 5 || math.IsNaN(p.Rating):
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalidProduct)
	case p.Reviews < 0:
		return fmt.Errorf("%w: reviews must not be negative", ErrInvalidProduct)
	}
	return nil
}

func syncInventory(prev, next []model.Product) {
	kept := make(map[string]bool, len(next))
	for _, p := range next {
		kept[p.ID+"\x00"+string(p.Category)] = true
		prometheus.UpdateProductInventory(p.ID, string(p.Category), p.Stock)
	}
	for _, p := range prev {
		if !kept[p.ID+"\x00"+string(p.Category)] {
			prometheus.RemoveProductInventory(p.ID, string(p.Category))
		}
	}
}
