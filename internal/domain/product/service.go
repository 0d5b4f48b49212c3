// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound is returned when a product id is unknown to the catalog.
	ErrNotFound = errors.New("product not found")
	// ErrFetch wraps failures reading from the remote product source.
	ErrFetch = errors.New("product source fetch failed")
	// ErrPersistence wraps failures writing to the remote product source.
	ErrPersistence = errors.New("product source update failed")
)

// Source is the remote product API the catalog mirrors. Implementations
// round-trip raw records; sanitization happens in the catalog.
type Source interface {
	FetchAll(ctx context.Context) ([]RawProduct, error)
	Fetch(ctx context.Context, id string) (RawProduct, error)
	Update(ctx context.Context, p Product) (RawProduct, error)
	Create(ctx context.Context, p Product) (RawProduct, error)
	Delete(ctx context.Context, id string) error
}

// Service is the client-side catalog: the single cached view of the remote
// product list, and the only path through which stock is mutated.
type Service struct {
	source Source
	logger *logrus.Logger

	mu       sync.RWMutex
	products []Product
	index    map[string]int

	group       singleflight.Group
	subscribers []func()
}

// NewService creates a new catalog service
func NewService(source Source, logger *logrus.Logger) *Service {
	return &Service{
		source: source,
		logger: logger,
		index:  map[string]int{},
	}
}

// Subscribe registers a callback invoked after every successful catalog
// mutation (full reload, stock adjustment, admin create/update/delete).
// The cart store uses this to re-clamp quantities against fresh stock.
func (s *Service) Subscribe(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Service) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

// LoadAll fetches the full product list from the remote source and replaces
// the in-memory catalog. On failure the previous catalog is kept and the
// error is returned to the caller. Concurrent calls are collapsed into a
// single fetch.
func (s *Service) LoadAll(ctx context.Context) error {
	_, err, _ := s.group.Do("load-all", func() (interface{}, error) {
		raws, err := s.source.FetchAll(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("catalog reload failed, keeping previous products")
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}

		products := make([]Product, len(raws))
		index := make(map[string]int, len(raws))
		for i, raw := range raws {
			products[i] = raw.Sanitize()
			index[products[i].ID] = i
		}

		s.mu.Lock()
		s.products = products
		s.index = index
		s.mu.Unlock()

		s.logger.WithField("count", len(products)).Info("catalog loaded")
		return nil, nil
	})
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// Products returns a copy of the cached product list.
func (s *Service) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// GetByID looks up a cached product. A missing id is a normal outcome, not
// an error: products can vanish between catalog reloads.
func (s *Service) GetByID(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// AdjustStock applies a stock delta to a product and persists the new value
// to the remote source. Decreases are floored at zero; increases are
// uncapped. The in-memory cache is only updated after the remote write
// succeeds, so a failed round-trip leaves no partial state.
//
// The read and the write are not atomic: two sessions adjusting the same
// product can clobber each other. Accepted limitation of the
// single-session-per-browser model; there is no version token at the
// product-source boundary.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (Product, error) {
	current, ok := s.GetByID(id)
	if !ok {
		return Product{}, fmt.Errorf("adjust stock %q: %w", id, ErrNotFound)
	}

	newStock := current.Stock + delta
	if newStock < 0 {
		newStock = 0
	}

	updated := current
	updated.Stock = newStock

	raw, err := s.source.Update(ctx, updated)
	if err != nil {
		return Product{}, fmt.Errorf("%w: product %q: %v", ErrPersistence, id, err)
	}

	fresh := raw.Sanitize()
	s.replace(fresh)

	s.logger.WithFields(logrus.Fields{
		"product_id": id,
		"delta":      delta,
		"stock":      fresh.Stock,
	}).Debug("stock adjusted")

	s.notify()
	return fresh, nil
}

// Update persists edited product fields through the remote source and
// refreshes the cache entry.
func (s *Service) Update(ctx context.Context, p Product) (Product, error) {
	if _, ok := s.GetByID(p.ID); !ok {
		return Product{}, fmt.Errorf("update product %q: %w", p.ID, ErrNotFound)
	}

	raw, err := s.source.Update(ctx, p)
	if err != nil {
		return Product{}, fmt.Errorf("%w: product %q: %v", ErrPersistence, p.ID, err)
	}

	fresh := raw.Sanitize()
	s.replace(fresh)
	s.notify()
	return fresh, nil
}

// Create registers a new product at the remote source and appends it to the
// cache.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	raw, err := s.source.Create(ctx, p)
	if err != nil {
		return Product{}, fmt.Errorf("%w: create product: %v", ErrPersistence, err)
	}

	fresh := raw.Sanitize()

	s.mu.Lock()
	s.index[fresh.ID] = len(s.products)
	s.products = append(s.products, fresh)
	s.mu.Unlock()

	s.notify()
	return fresh, nil
}

// Delete removes a product at the remote source and drops it from the cache.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, ok := s.GetByID(id); !ok {
		return fmt.Errorf("delete product %q: %w", id, ErrNotFound)
	}

	if err := s.source.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: delete product %q: %v", ErrPersistence, id, err)
	}

	s.mu.Lock()
	if i, ok := s.index[id]; ok {
		s.products = append(s.products[:i], s.products[i+1:]...)
		delete(s.index, id)
		for j := i; j < len(s.products); j++ {
			s.index[s.products[j].ID] = j
		}
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// replace swaps a single cache entry, whole-record. Unknown ids are
// appended: the remote may return records created by another session.
func (s *Service) replace(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[p.ID]; ok {
		s.products[i] = p
		return
	}
	s.index[p.ID] = len(s.products)
	s.products = append(s.products, p)
}
