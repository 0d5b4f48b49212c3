// internal/domain/checkout/order_form.go
package checkout

import (
	"fmt"
	"regexp"
	"strings"
)

// OrderForm carries the buyer-entered order data collected before a
// purchase is finalized. Card details are validated for shape only; no
// payment gateway is involved.
type OrderForm struct {
	Name     string `json:"name" binding:"required"`
	LastName string `json:"last_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Address  string `json:"address" binding:"required"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Phone    string `json:"phone"`

	CardNumber string `json:"card_number" binding:"required"`
	CardName   string `json:"card_name" binding:"required"`
	Expiry     string `json:"expiry" binding:"required"`
	CVV        string `json:"cvv" binding:"required"`
}

var (
	numericRe = regexp.MustCompile(`^\d+$`)
	alphaRe   = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	expiryRe  = regexp.MustCompile(`^(0[1-9]|1[0-2])/?([0-9]{2})$`)
)

// ValidationError names the offending field alongside the message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks field formats. Required-ness is enforced by binding tags;
// this covers the shapes binding cannot express.
func (f *OrderForm) Validate() error {
	if !alphaRe.MatchString(f.Name) {
		return &ValidationError{Field: "name", Message: "must contain letters only"}
	}
	if !alphaRe.MatchString(f.LastName) {
		return &ValidationError{Field: "last_name", Message: "must contain letters only"}
	}
	if !emailRe.MatchString(f.Email) {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if f.Zip != "" && !numericRe.MatchString(f.Zip) {
		return &ValidationError{Field: "zip", Message: "must contain digits only"}
	}
	if f.Phone != "" && !numericRe.MatchString(f.Phone) {
		return &ValidationError{Field: "phone", Message: "must contain digits only"}
	}
	if f.City != "" && !alphaRe.MatchString(f.City) {
		return &ValidationError{Field: "city", Message: "must contain letters only"}
	}
	if f.Province != "" && !alphaRe.MatchString(f.Province) {
		return &ValidationError{Field: "province", Message: "must contain letters only"}
	}

	card := strings.ReplaceAll(f.CardNumber, " ", "")
	if !numericRe.MatchString(card) || len(card) < 13 || len(card) > 19 {
		return &ValidationError{Field: "card_number", Message: "must be 13 to 19 digits"}
	}
	if !alphaRe.MatchString(f.CardName) {
		return &ValidationError{Field: "card_name", Message: "must contain letters only"}
	}
	if !expiryRe.MatchString(f.Expiry) {
		return &ValidationError{Field: "expiry", Message: "must be in MM/YY format"}
	}
	if !numericRe.MatchString(f.CVV) || len(f.CVV) != 3 {
		return &ValidationError{Field: "cvv", Message: "must be 3 digits"}
	}
	return nil
}
