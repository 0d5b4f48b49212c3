// internal/interfaces/http/handlers/sessions.go
package handlers

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-core/internal/domain/cart"
	"github.com/your-org/storefront-core/internal/domain/identity"
	"github.com/your-org/storefront-core/internal/domain/product"
)

// CartSessions hands out one cart.Store per identity key. The store itself
// keeps the single-writer-per-session model; this registry is what lets a
// multi-user API serve many such sessions at once. Stores reconcile
// against the catalog whenever it changes.
type CartSessions struct {
	repo    cart.Repository
	catalog *product.Service
	logger  *logrus.Logger

	mu     sync.Mutex
	stores map[string]*cart.Store
}

// NewCartSessions creates the session registry and hooks it into catalog
// change notifications.
func NewCartSessions(repo cart.Repository, catalog *product.Service, logger *logrus.Logger) *CartSessions {
	s := &CartSessions{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		stores:  map[string]*cart.Store{},
	}

	catalog.Subscribe(s.reconcileAll)
	return s
}

// StoreFor returns the cart store for the given identity, creating and
// loading it on first use.
func (s *CartSessions) StoreFor(ctx context.Context, ident *identity.Identity) (*cart.Store, error) {
	key := identity.Key(ident)

	s.mu.Lock()
	store, ok := s.stores[key]
	s.mu.Unlock()
	if ok {
		return store, nil
	}

	store = cart.NewStore(s.repo, s.catalog, s.logger)
	if err := store.SwitchIdentity(ctx, ident); err != nil {
		return nil, err
	}

	s.mu.Lock()
	// Another request may have raced us here; keep the first store so a
	// session never sees two writers.
	if existing, ok := s.stores[key]; ok {
		store = existing
	} else {
		s.stores[key] = store
	}
	s.mu.Unlock()

	return store, nil
}

// reconcileAll re-clamps every live session against fresh catalog stock.
func (s *CartSessions) reconcileAll() {
	s.mu.Lock()
	stores := make([]*cart.Store, 0, len(s.stores))
	for _, store := range s.stores {
		stores = append(stores, store)
	}
	s.mu.Unlock()

	for _, store := range stores {
		if err := store.Reconcile(context.Background()); err != nil {
			s.logger.WithError(err).Warn("cart reconcile after catalog change failed")
		}
	}
}
