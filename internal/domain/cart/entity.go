// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/storefront-core/internal/domain/product"
)

// Line is one cart entry: a snapshot of the product's display fields plus a
// quantity. The snapshot is owned by the cart; stock truth stays with the
// catalog.
type Line struct {
	ProductID   string    `json:"product_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Details     string    `json:"details,omitempty"`
	Image       string    `json:"image,omitempty"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	AddedAt     time.Time `json:"added_at"`
}

// Subtotal returns price * quantity for this line.
func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

func newLine(p product.Product) Line {
	return Line{
		ProductID:   p.ID,
		Title:       p.Title,
		Description: p.Description,
		Details:     p.Details,
		Image:       p.Image,
		Price:       p.Price,
		Quantity:    1,
		AddedAt:     time.Now().UTC(),
	}
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int     `json:"item_count"`     // Number of unique lines
	TotalQuantity int     `json:"total_quantity"` // Sum of all quantities
	Total         float64 `json:"total"`          // Sum of price * quantity
}
