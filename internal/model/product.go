package model

// Category of a sellable product
type Category string

const (
	CategoryCube      Category = "cube"
	CategoryPuzzle    Category = "puzzle"
	CategoryToy       Category = "toy"
	CategoryAccessory Category = "accessory"
)

// IsValidCategory reports whether c is one of the known categories
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryCube, CategoryPuzzle, CategoryToy, CategoryAccessory:
		return true
	default:
		return false
	}
}

// Product represents a catalog entry. Prices are whole currency units.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         int64    `json:"price"`
	OriginalPrice *int64   `json:"originalPrice,omitempty"`
	Category      Category `json:"category"`
	Image         string   `json:"image"`
	Stock         int      `json:"stock"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Featured      bool     `json:"featured"`
	Badge         string   `json:"badge,omitempty"`
}

// ProductInput is a product before the catalog assigns its id
type ProductInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         int64    `json:"price"`
	OriginalPrice *int64   `json:"originalPrice,omitempty"`
	Category      Category `json:"category"`
	Image         string   `json:"image"`
	Stock         int      `json:"stock"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Featured      bool     `json:"featured"`
	Badge         string   `json:"badge,omitempty"`
}

// ProductPatch holds the fields of a partial product update; nil fields are left untouched
type ProductPatch struct {
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Price         *int64    `json:"price,omitempty"`
	OriginalPrice *int64    `json:"originalPrice,omitempty"`
	Category      *Category `json:"category,omitempty"`
	Image         *string   `json:"image,omitempty"`
	Stock         *int      `json:"stock,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	Reviews       *int      `json:"reviews,omitempty"`
	Featured      *bool     `json:"featured,omitempty"`
	Badge         *string   `json:"badge,omitempty"`
}

// Apply returns p with the patch applied
func (patch ProductPatch) Apply(p Product) Product {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.OriginalPrice != nil {
		v := *patch.OriginalPrice
		p.OriginalPrice = &v
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.Reviews != nil {
		p.Reviews = *patch.Reviews
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}
	if patch.Badge != nil {
		p.Badge = *patch.Badge
	}
	return p
}

// Product builds a product with the given id from the input
func (in ProductInput) Product(id string) Product {
	return Product{
		ID:            id,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Category:      in.Category,
		Image:         in.Image,
		Stock:         in.Stock,
		Rating:        in.Rating,
		Reviews:       in.Reviews,
		Featured:      in.Featured,
		Badge:         in.Badge,
	}
}
