package domain

import "time"

// DefaultWeight is applied when a product is created without a weight.
const DefaultWeight = "1kg"

// ProductWeights lists the pack sizes the catalog accepts.
var ProductWeights = []string{
	"0.5kg", "1kg", "1.5kg", "2kg", "2.5kg", "3kg", "4kg", "5kg", "10kg", "15kg", "20kg",
}

// Product is a catalog entry. Price is in whole rupees.
type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	Image         string    `json:"image"`
	ImagePublicID string    `json:"cloudinary_public_id,omitempty"`
	Category      string    `json:"category"`
	Weight        string    `json:"weight"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CartLine is a cart item resolved against the live catalog.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineItem snapshots the line at its current catalog price.
func (l CartLine) LineItem() LineItem {
	return LineItem{
		ProductID: l.Product.ID,
		Title:     l.Product.Title,
		Quantity:  l.Quantity,
		UnitPrice: l.Product.Price,
	}
}
