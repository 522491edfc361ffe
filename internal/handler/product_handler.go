package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sahilkr01/drcuberstore/internal/catalog"
	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"go.uber.org/zap"
)

// ProductHandler serves the catalog
type ProductHandler struct {
	Catalog *catalog.Catalog
}

// ListProducts returns the catalog, optionally narrowed by q, category or featured
func (h *ProductHandler) ListProducts(c echo.Context) error {
	var products []model.Product
	switch {
	case c.QueryParam("q") != "":
		products = h.Catalog.Search(c.QueryParam("q"))
	case c.QueryParam("category") != "":
		category := model.Category(c.QueryParam("category"))
		if !model.IsValidCategory(category) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
		}
		products = h.Catalog.ByCategory(category)
	default:
		products = h.Catalog.List()
	}

	if featured, err := strconv.ParseBool(c.QueryParam("featured")); err == nil && featured {
		products = onlyFeatured(products)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"count":    len(products),
	})
}

func onlyFeatured(products []model.Product) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// GetProduct returns one product
func (h *ProductHandler) GetProduct(c echo.Context) error {
	p, ok := h.Catalog.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	return c.JSON(http.StatusOK, p)
}

// CreateProduct adds a product with a generated id
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	var in model.ProductInput
	if err := c.Bind(&in); err != nil {
		log.Warn("Failed to parse product", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	p, err := h.Catalog.Add(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, log, err, "failed to add product")
	}

	log.Info("Product added", zap.String("product_id", p.ID))
	return c.JSON(http.StatusCreated, p)
}

// UpdateProduct applies a partial update
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	var patch model.ProductPatch
	if err := c.Bind(&patch); err != nil {
		log.Warn("Failed to parse product update", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	p, err := h.Catalog.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return h.fail(c, log, err, "failed to update product")
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteProduct removes a product
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	if err := h.Catalog.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, log, err, "failed to delete product")
	}

	log.Info("Product deleted", zap.String("product_id", c.Param("id")))
	return c.NoContent(http.StatusNoContent)
}

// Stats returns the inventory summary
func (h *ProductHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Catalog.Stats())
}

func (h *ProductHandler) fail(c echo.Context, log *zap.Logger, err error, msg string) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	case errors.Is(err, catalog.ErrInvalidProduct):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return storageFailure(c, log, err, msg)
	}
}
