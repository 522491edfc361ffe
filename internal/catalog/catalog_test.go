package catalog

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sahilkr01/drcuberstore/internal/kvstore"
	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/internal/notify"
	"github.com/sahilkr01/drcuberstore/internal/tab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openCatalog(t *testing.T, store kvstore.Store, hub *notify.Hub) *Catalog {
	t.Helper()
	tb := tab.New(store, hub, zap.NewNop())
	t.Cleanup(tb.Close)
	c, err := New(context.Background(), tb, zap.NewNop())
	require.NoError(t, err)
	return c
}

func newInput(name string) model.ProductInput {
	return model.ProductInput{
		Name:     name,
		Price:    399,
		Category: model.CategoryCube,
		Stock:    20,
		Rating:   4.2,
	}
}

func stored(t *testing.T, store kvstore.Store) []model.Product {
	t.Helper()
	raw, ok, err := store.Get(context.Background(), model.ProductsKey)
	require.NoError(t, err)
	require.True(t, ok)
	var products []model.Product
	require.NoError(t, json.Unmarshal([]byte(raw), &products))
	return products
}

func TestSeedAndRead(t *testing.T) {
	store := kvstore.NewMemory(0)
	c := openCatalog(t, store, notify.NewHub())

	list := c.List()
	require.Len(t, list, 12)
	assert.Equal(t, SeedProducts(), list)

	raw, ok, err := store.Get(context.Background(), model.ProductsKey)
	require.NoError(t, err)
	require.True(t, ok)
	expected, err := json.Marshal(SeedProducts())
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), raw)
}

func TestExistingListIsNotReseeded(t *testing.T) {
	store := kvstore.NewMemory(0)
	require.NoError(t, store.Set(context.Background(), model.ProductsKey, "[]"))

	c := openCatalog(t, store, notify.NewHub())
	assert.Empty(t, c.List())
}

func TestCorruptListFailsLoad(t *testing.T) {
	store := kvstore.NewMemory(0)
	require.NoError(t, store.Set(context.Background(), model.ProductsKey, "{oops"))

	tb := tab.New(store, notify.NewHub(), zap.NewNop())
	defer tb.Close()
	_, err := New(context.Background(), tb, zap.NewNop())
	assert.Error(t, err)
}

func TestRoundTripAfterReload(t *testing.T) {
	store := kvstore.NewMemory(0)
	ctx := context.Background()
	c := openCatalog(t, store, notify.NewHub())

	added, err := c.Add(ctx, newInput("Skewb"))
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)

	stock := 3
	_, err = c.Update(ctx, "4", model.ProductPatch{Stock: &stock})
	require.NoError(t, err)
	require.NoError(t, c.Remove(ctx, "6"))

	reloaded := openCatalog(t, store, notify.NewHub())
	assert.Equal(t, c.List(), reloaded.List())
	assert.Equal(t, c.List(), stored(t, store))

	p, ok := reloaded.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Skewb", p.Name)
	p, _ = reloaded.Get("4")
	assert.Equal(t, 3, p.Stock)
	_, ok = reloaded.Get("6")
	assert.False(t, ok)
}

func TestAddAssignsDistinctIDs(t *testing.T) {
	c := openCatalog(t, kvstore.NewMemory(0), notify.NewHub())
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p, err := c.Add(ctx, newInput("Cube"))
		require.NoError(t, err)
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestMissingProduct(t *testing.T) {
	c := openCatalog(t, kvstore.NewMemory(0), notify.NewHub())
	ctx := context.Background()

	name := "x"
	_, err := c.Update(ctx, "nope", model.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.Remove(ctx, "nope"), ErrNotFound)
	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestValidation(t *testing.T) {
	c := openCatalog(t, kvstore.NewMemory(0), notify.NewHub())
	ctx := context.Background()
	negative := int64(-1)

	tests := []struct {
		name   string
		mutate func(*model.ProductInput)
	}{
		{"empty name", func(in *model.ProductInput) { in.Name = "  " }},
		{"unknown category", func(in *model.ProductInput) { in.Category = "book" }},
		{"negative price", func(in *model.ProductInput) { in.Price = -1 }},
		{"negative original price", func(in *model.ProductInput) { in.OriginalPrice = &negative }},
		{"negative stock", func(in *model.ProductInput) { in.Stock = -5 }},
		{"rating above five", func(in *model.ProductInput) { in.Rating = 5.1 }},
		{"negative reviews", func(in *model.ProductInput) { in.Reviews = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newInput("Valid")
			tt.mutate(&in)
			_, err := c.Add(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidProduct)
		})
	}
	assert.Len(t, c.List(), 12)

	badRating := 7.0
	_, err := c.Update(ctx, "1", model.ProductPatch{Rating: &badRating})
	assert.ErrorIs(t, err, ErrInvalidProduct)
	p, _ := c.Get("1")
	assert.Equal(t, 4.8, p.Rating)
}

func TestSameTabSignal(t *testing.T) {
	store := kvstore.NewMemory(0)
	hub := notify.NewHub()
	tb := tab.New(store, hub, zap.NewNop())
	defer tb.Close()
	c, err := New(context.Background(), tb, zap.NewNop())
	require.NoError(t, err)

	var signals atomic.Int32
	tb.Bus().On(model.ProductsUpdatedTopic, func() { signals.Add(1) })

	_, err = c.Add(context.Background(), newInput("Skewb"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), signals.Load(), "signal fires synchronously in the writing tab")
}

func TestCrossTabReplacesList(t *testing.T) {
	store := kvstore.NewMemory(0)
	hub := notify.NewHub()
	a := openCatalog(t, store, hub)
	b := openCatalog(t, store, hub)

	added, err := a.Add(context.Background(), newInput("Skewb"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, ok := b.Get(added.ID)
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, a.List(), b.List())
}

// An unaware tab rewrites the whole list from its stale copy, so the other tab's add is lost.
func TestConcurrentTabsUnawareLosesAdd(t *testing.T) {
	store := kvstore.NewMemory(0)
	ctx := context.Background()
	a := openCatalog(t, store, notify.NewHub())
	b := openCatalog(t, store, notify.NewHub())

	p1, err := a.Add(ctx, newInput("P1"))
	require.NoError(t, err)

	stock := 7
	_, err = b.Update(ctx, "2", model.ProductPatch{Stock: &stock})
	require.NoError(t, err)

	final := stored(t, store)
	assert.Equal(t, -1, indexOf(final, p1.ID), "last writer wins: P1 dropped")
	assert.Equal(t, 7, final[indexOf(final, "2")].Stock)
}

// A tab that has applied the other tab's change before writing keeps both edits.
func TestConcurrentTabsAwareKeepsBoth(t *testing.T) {
	store := kvstore.NewMemory(0)
	hub := notify.NewHub()
	ctx := context.Background()
	a := openCatalog(t, store, hub)
	b := openCatalog(t, store, hub)

	p1, err := a.Add(ctx, newInput("P1"))
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		_, ok := b.Get(p1.ID)
		return ok
	}, time.Second, 5*time.Millisecond)

	stock := 7
	_, err = b.Update(ctx, "2", model.ProductPatch{Stock: &stock})
	require.NoError(t, err)

	final := stored(t, store)
	assert.NotEqual(t, -1, indexOf(final, p1.ID))
	assert.Equal(t, 7, final[indexOf(final, "2")].Stock)
}

func TestQuotaFailureKeepsCache(t *testing.T) {
	seed := mustJSON(t, SeedProducts())
	store := kvstore.NewMemory(int64(len(model.ProductsKey) + len(seed)))
	require.NoError(t, store.Set(context.Background(), model.ProductsKey, seed))
	c := openCatalog(t, store, notify.NewHub())

	_, err := c.Add(context.Background(), newInput("Too much"))
	assert.ErrorIs(t, err, kvstore.ErrQuotaExceeded)
	assert.Equal(t, SeedProducts(), c.List())
	assert.Equal(t, SeedProducts(), stored(t, store))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
