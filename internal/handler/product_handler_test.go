package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productList struct {
	Products []model.Product `json:"products"`
	Count    int             `json:"count"`
}

func TestListProducts(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantCount int
	}{
		{"all", "/api/products", http.StatusOK, 12},
		{"featured", "/api/products?featured=true", http.StatusOK, 6},
		{"search", "/api/products?q=megaminx", http.StatusOK, 1},
		{"unknown category", "/api/products?category=food", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, "", "")
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var resp productList
			decode(t, rec, &resp)
			assert.Equal(t, tt.wantCount, resp.Count)
			assert.Len(t, resp.Products, tt.wantCount)
		})
	}
}

func TestListProductsByCategory(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/products?category=puzzle", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp productList
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Products)
	for _, p := range resp.Products {
		assert.Equal(t, model.CategoryPuzzle, p.Category)
	}
}

func TestListProductsEmptyCategory(t *testing.T) {
	s := newTestServer(t)
	for _, p := range s.catalog.ByCategory(model.CategoryToy) {
		require.NoError(t, s.catalog.Remove(context.Background(), p.ID))
	}

	rec := s.do(t, http.MethodGet, "/api/products?category=toy", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":[],"count":0}`, rec.Body.String())
}

func TestGetProduct(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products/2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p model.Product
	decode(t, rec, &p)
	assert.Equal(t, "Magnetic Cube 3x3", p.Name)

	rec = s.do(t, http.MethodGet, "/api/products/404", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminProductRoutesRequireLogin(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/admin/products", "", `{"name":"Skewb"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, s.catalog.List(), 12)
}

func TestAdminProductLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec := s.do(t, http.MethodPost, "/api/admin/products", token,
		`{"name":"Skewb","description":"Corner turning puzzle","price":399,"category":"puzzle","image":"skewb.jpg","stock":15,"rating":4.4,"reviews":20}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Product
	decode(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Len(t, s.catalog.List(), 13)

	rec = s.do(t, http.MethodPut, "/api/admin/products/"+created.ID, token, `{"stock":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Product
	decode(t, rec, &updated)
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, "Skewb", updated.Name)

	rec = s.do(t, http.MethodGet, "/api/admin/products/stats", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		TotalProducts int `json:"totalProducts"`
	}
	decode(t, rec, &stats)
	assert.Equal(t, 13, stats.TotalProducts)

	rec = s.do(t, http.MethodDelete, "/api/admin/products/"+created.ID, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := s.catalog.Get(created.ID)
	assert.False(t, ok)
}

func TestAdminProductErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec := s.do(t, http.MethodPost, "/api/admin/products", token, `{"name":"","price":-1,"category":"cube"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/admin/products/missing", token, `{"stock":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminProductQuotaExceeded(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	s.store.SetQuota(s.store.Used())

	rec := s.do(t, http.MethodPost, "/api/admin/products", token,
		`{"name":"Skewb","price":399,"category":"puzzle","stock":15}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Len(t, s.catalog.List(), 12)
}
