// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-core/internal/domain/identity"
	"github.com/your-org/storefront-core/internal/domain/product"
)

var (
	// ErrAuthRequired is returned when a guest tries to add to the cart.
	ErrAuthRequired = errors.New("authentication required")
	// ErrInvalidPrice is returned for products whose price is not a finite number.
	ErrInvalidPrice = errors.New("product has no valid price")
	// ErrOutOfStock is returned when adding a product with no stock.
	ErrOutOfStock = errors.New("product out of stock")
	// ErrAlreadyInCart signals an idempotent re-add. Soft: the cart is unchanged
	// and still valid.
	ErrAlreadyInCart = errors.New("product already in cart")
	// ErrStockCeilingReached signals a quantity change clamped back to its
	// current value. Soft: no mutation happened.
	ErrStockCeilingReached = errors.New("stock ceiling reached")
	// ErrLineNotFound is returned when a quantity change targets a product
	// that is not in the cart. State is untouched.
	ErrLineNotFound = errors.New("line not in cart")
)

// Store owns the cart of the current identity for one browser session.
// All quantity rules live here; the catalog is consulted for stock ceilings
// but never mutated. Every mutation writes through to the repository before
// returning.
type Store struct {
	repo    Repository
	catalog *product.Service
	logger  *logrus.Logger

	mu    sync.Mutex
	ident *identity.Identity
	key   string
	lines []Line
}

// NewStore creates a cart store positioned on the guest partition.
// Callers that already know the session's identity should follow up with
// SwitchIdentity.
func NewStore(repo Repository, catalog *product.Service, logger *logrus.Logger) *Store {
	return &Store{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		key:     identity.Key(nil),
	}
}

// SwitchIdentity swaps the visible cart to the partition of the given
// identity (nil for guest). The outgoing partition needs no flush since
// every mutation already persisted, so this is a plain reload. Partitions
// are never merged.
func (s *Store) SwitchIdentity(ctx context.Context, ident *identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := identity.Key(ident)
	lines, err := s.repo.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load cart partition %q: %w", key, err)
	}

	s.ident = ident
	s.key = key
	s.lines = lines
	return nil
}

// AddLine appends a quantity-1 line for the product. Re-adding an id already
// in the cart is a no-op signalled as ErrAlreadyInCart.
func (s *Store) AddLine(ctx context.Context, p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ident == nil {
		return ErrAuthRequired
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return fmt.Errorf("product %q: %w", p.ID, ErrInvalidPrice)
	}
	if !p.InStock() {
		return fmt.Errorf("product %q: %w", p.ID, ErrOutOfStock)
	}
	if s.find(p.ID) >= 0 {
		return ErrAlreadyInCart
	}

	s.lines = append(s.lines, newLine(p))
	if err := s.persist(ctx); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"partition":  s.key,
		"product_id": p.ID,
	}).Debug("line added to cart")
	return nil
}

// SetQuantity applies a quantity delta to a line, clamped to [1, stock].
// When the catalog no longer knows the product the quantity stays as it is.
// A delta that clamps back to the current quantity is signalled as
// ErrStockCeilingReached without mutating.
func (s *Store) SetQuantity(ctx context.Context, productID string, delta int) (Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(productID)
	if i < 0 {
		return Line{}, ErrLineNotFound
	}

	line := s.lines[i]
	newQuantity := line.Quantity

	if p, ok := s.catalog.GetByID(productID); ok {
		newQuantity = clamp(line.Quantity+delta, 1, p.Stock)
	}

	if newQuantity == line.Quantity {
		return line, ErrStockCeilingReached
	}

	s.lines[i].Quantity = newQuantity
	if err := s.persist(ctx); err != nil {
		return Line{}, err
	}
	return s.lines[i], nil
}

// RemoveLine deletes the line for the product, returning it so the UI can
// name what was removed. Removing an absent id is a no-op.
func (s *Store) RemoveLine(ctx context.Context, productID string) (Line, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(productID)
	if i < 0 {
		return Line{}, false, nil
	}

	removed := s.lines[i]
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	if err := s.persist(ctx); err != nil {
		return Line{}, false, err
	}
	return removed, true, nil
}

// Clear empties the partition silently. Used internally after a successful
// purchase.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

// Empty empties the partition as an explicit user action and reports how
// many lines were dropped, so the caller can notify. Same mutation as Clear,
// different user-facing outcome.
func (s *Store) Empty(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := len(s.lines)
	if err := s.clearLocked(ctx); err != nil {
		return 0, err
	}
	return dropped, nil
}

func (s *Store) clearLocked(ctx context.Context) error {
	s.lines = nil
	return s.persist(ctx)
}

// Reconcile re-clamps every line's quantity to the catalog's current stock.
// Lines are clamped down, never removed; products the catalog no longer
// knows keep their quantity. Persists only when something changed.
func (s *Store) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.lines {
		p, ok := s.catalog.GetByID(s.lines[i].ProductID)
		if !ok {
			continue
		}
		q := min(s.lines[i].Quantity, p.Stock)
		if q < 1 {
			// Depleted stock keeps the line at quantity 1; checkout's
			// validation is what reports it as unavailable.
			q = 1
		}
		if q != s.lines[i].Quantity {
			s.logger.WithFields(logrus.Fields{
				"partition":  s.key,
				"product_id": s.lines[i].ProductID,
				"from":       s.lines[i].Quantity,
				"to":         q,
			}).Info("cart line clamped to current stock")
			s.lines[i].Quantity = q
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return s.persist(ctx)
}

// Lines returns a copy of the current partition's lines.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total returns the cart total, recomputed from current lines.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, l := range s.lines {
		total += l.Subtotal()
	}
	return total
}

// CalculateTotals derives the totals summary from current lines.
func (s *Store) CalculateTotals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := Totals{ItemCount: len(s.lines)}
	for _, l := range s.lines {
		totals.TotalQuantity += l.Quantity
		totals.Total += l.Subtotal()
	}
	return totals
}

// Identity returns the identity whose partition is active, nil for guest.
func (s *Store) Identity() *identity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ident
}

func (s *Store) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.key, s.lines); err != nil {
		return fmt.Errorf("persist cart partition %q: %w", s.key, err)
	}
	return nil
}

// find returns the index of the line for productID, -1 when absent. Linear:
// carts hold one line per product and stay small.
func (s *Store) find(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
