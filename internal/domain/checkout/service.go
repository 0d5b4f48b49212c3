// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-core/internal/domain/cart"
	"github.com/your-org/storefront-core/internal/domain/product"
)

// ErrEmptyCart is returned when finalizing an empty cart. No stock is touched.
var ErrEmptyCart = errors.New("cart is empty")

// ProductGoneError reports a cart line whose product no longer exists in the
// catalog at validation time.
type ProductGoneError struct {
	Title string
}

func (e *ProductGoneError) Error() string {
	return fmt.Sprintf("product %q no longer exists", e.Title)
}

// InsufficientStockError reports a cart line whose quantity exceeds the
// current stock at validation time.
type InsufficientStockError struct {
	Title     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Title, e.Requested, e.Available)
}

// CommitError reports a stock decrement that failed mid-commit. Lines
// decremented before the failure are not rolled back; Committed discloses
// them so the caller can present the partial effect.
type CommitError struct {
	Line      cart.Line
	Committed []Receipt
	Err       error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("stock decrement failed for %q after %d committed line(s): %v", e.Line.Title, len(e.Committed), e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Receipt is one purchased line of a completed (or partially committed)
// purchase.
type Receipt struct {
	ProductID      string  `json:"product_id"`
	Title          string  `json:"title"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	LineTotal      float64 `json:"line_total"`
	RemainingStock int     `json:"remaining_stock"`
}

// PurchaseResult summarizes a fully committed purchase.
type PurchaseResult struct {
	Lines []Receipt `json:"lines"`
	Total float64   `json:"total"`
}

// Service commits carts against live stock: validate every line, then
// decrement stock line by line, then clear the cart.
type Service struct {
	catalog *product.Service
	logger  *logrus.Logger
}

// NewService creates a new checkout service
func NewService(catalog *product.Service, logger *logrus.Logger) *Service {
	return &Service{
		catalog: catalog,
		logger:  logger,
	}
}

// FinalizePurchase runs the two-phase checkout protocol over the store's
// current cart.
//
// Validate phase: every line's product is re-fetched from the catalog; a
// vanished product or a quantity above current stock aborts before any
// mutation.
//
// Commit phase: stock is decremented sequentially, one line at a time, so a
// failure is attributable to exactly one line. Lines committed before a
// failure stay committed; CommitError discloses them. Validation narrows but
// does not close the window for another session to deplete stock between the
// two phases.
func (s *Service) FinalizePurchase(ctx context.Context, store *cart.Store) (*PurchaseResult, error) {
	lines := store.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Validate phase: read-only, all-or-nothing.
	for _, line := range lines {
		p, ok := s.catalog.GetByID(line.ProductID)
		if !ok {
			return nil, &ProductGoneError{Title: line.Title}
		}
		if line.Quantity > p.Stock {
			return nil, &InsufficientStockError{
				Title:     line.Title,
				Requested: line.Quantity,
				Available: p.Stock,
			}
		}
	}

	// Commit phase.
	result := &PurchaseResult{Lines: make([]Receipt, 0, len(lines))}
	for _, line := range lines {
		updated, err := s.catalog.AdjustStock(ctx, line.ProductID, -line.Quantity)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"product_id": line.ProductID,
				"committed":  len(result.Lines),
			}).Error("purchase commit failed mid-flight")
			return nil, &CommitError{Line: line, Committed: result.Lines, Err: err}
		}

		result.Lines = append(result.Lines, Receipt{
			ProductID:      line.ProductID,
			Title:          line.Title,
			Quantity:       line.Quantity,
			UnitPrice:      line.Price,
			LineTotal:      line.Subtotal(),
			RemainingStock: updated.Stock,
		})
		result.Total += line.Subtotal()
	}

	if err := store.Clear(ctx); err != nil {
		// Stock is already committed; a stale cart self-corrects on the
		// next reconcile, so report success with a warning.
		s.logger.WithError(err).Warn("cart clear after purchase failed")
	}

	s.logger.WithFields(logrus.Fields{
		"lines": len(result.Lines),
		"total": result.Total,
	}).Info("purchase completed")
	return result, nil
}
