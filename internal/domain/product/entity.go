// internal/domain/product/entity.go
package product

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Product represents a catalog product. Stock is a cached copy of the
// authoritative value held by the remote product source.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Details     string  `json:"details"`
	Image       string  `json:"image,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// InStock reports whether the cached stock allows adding the product to a cart.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// RawProduct mirrors the wire shape of the remote product source, where
// price and stock may arrive as numbers or as formatted strings
// (e.g. "$1,299.90"). Sanitize reduces them to clean numeric types.
type RawProduct struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Details     string          `json:"details"`
	Image       string          `json:"image,omitempty"`
	Price       json.RawMessage `json:"price,omitempty"`
	Stock       json.RawMessage `json:"stock,omitempty"`
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]+`)

// Sanitize converts a raw product into a Product with numeric price and
// stock. Unparsable values default to 0; stock is floored at zero.
func (r RawProduct) Sanitize() Product {
	stock := int(parseLenientNumber(r.Stock))
	if stock < 0 {
		stock = 0
	}

	price := parseLenientNumber(r.Price)
	if price < 0 {
		price = 0
	}

	return Product{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Details:     r.Details,
		Image:       r.Image,
		Price:       price,
		Stock:       stock,
	}
}

// parseLenientNumber accepts a JSON number or a string holding a possibly
// currency-formatted number and reduces it to a float64, 0 on failure.
func parseLenientNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0
	}

	cleaned := nonNumeric.ReplaceAllString(strings.TrimSpace(str), "")
	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return val
}
