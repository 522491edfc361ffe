package catalog

import (
	"math"
	"strings"

	"github.com/sahilkr01/drcuberstore/internal/model"
)

// Stats summarizes the catalog for the admin dashboard
type Stats struct {
	TotalProducts  int             `json:"totalProducts"`
	TotalStock     int             `json:"totalStock"`
	LowStockCount  int             `json:"lowStockCount"`
	LowStock       []model.Product `json:"lowStock"`
	InventoryValue int64           `json:"inventoryValue"`
	FeaturedCount  int             `json:"featuredCount"`
	AverageRating  float64         `json:"averageRating"`
}

// Search returns the products whose name or category contains term, ignoring case
func (c *Catalog) Search(term string) []model.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	products := c.List()
	if term == "" {
		return products
	}

	matched := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(string(p.Category)), term) {
			matched = append(matched, p)
		}
	}
	return matched
}

// ByCategory returns the products of category
func (c *Catalog) ByCategory(category model.Category) []model.Product {
	matched := []model.Product{}
	for _, p := range c.List() {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	return matched
}

// Featured returns the featured products
func (c *Catalog) Featured() []model.Product {
	matched := []model.Product{}
	for _, p := range c.List() {
		if p.Featured {
			matched = append(matched, p)
		}
	}
	return matched
}

// Stats computes the dashboard figures
func (c *Catalog) Stats() Stats {
	products := c.List()
	stats := Stats{
		TotalProducts: len(products),
		LowStock:      []model.Product{},
	}

	var ratingSum float64
	for _, p := range products {
		stats.TotalStock += p.Stock
		stats.InventoryValue += p.Price * int64(p.Stock)
		ratingSum += p.Rating
		if p.Featured {
			stats.FeaturedCount++
		}
		if p.Stock < LowStockThreshold {
			stats.LowStock = append(stats.LowStock, p)
		}
	}
	stats.LowStockCount = len(stats.LowStock)
	if len(products) > 0 {
		stats.AverageRating = math.Round(ratingSum/float64(len(products))*10) / 10
	}
	return stats
}
