package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-core/internal/domain/cart"
	"github.com/your-org/storefront-core/internal/domain/checkout"
	"github.com/your-org/storefront-core/internal/domain/identity"
	"github.com/your-org/storefront-core/internal/domain/product"
)

// storeSource is an in-memory product.Source whose Update can be rigged to
// fail after a number of successful writes.
type storeSource struct {
	mu      sync.Mutex
	records map[string]product.Product
	order   []string

	updatesLeft int // -1 means unlimited
}

func newStoreSource(products ...product.Product) *storeSource {
	s := &storeSource{records: map[string]product.Product{}, updatesLeft: -1}
	for _, p := range products {
		s.records[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	return s
}

func rawOf(p product.Product) product.RawProduct {
	return product.RawProduct{
		ID:    p.ID,
		Title: p.Title,
		Price: []byte(fmt.Sprintf("%g", p.Price)),
		Stock: []byte(fmt.Sprintf("%d", p.Stock)),
	}
}

func (s *storeSource) FetchAll(ctx context.Context) ([]product.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]product.RawProduct, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, rawOf(s.records[id]))
	}
	return out, nil
}

func (s *storeSource) Fetch(ctx context.Context, id string) (product.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rawOf(s.records[id]), nil
}

func (s *storeSource) Update(ctx context.Context, p product.Product) (product.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updatesLeft == 0 {
		return product.RawProduct{}, errors.New("write refused")
	}
	if s.updatesLeft > 0 {
		s.updatesLeft--
	}
	s.records[p.ID] = p
	return rawOf(p), nil
}

func (s *storeSource) Create(ctx context.Context, p product.Product) (product.RawProduct, error) {
	return product.RawProduct{}, errors.New("not implemented")
}

func (s *storeSource) Delete(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

func (s *storeSource) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id].Stock
}

// memRepo is the in-memory cart.Repository used to back the store.
type memRepo struct {
	mu   sync.Mutex
	data map[string][]cart.Line
}

func newMemRepo() *memRepo { return &memRepo{data: map[string][]cart.Line{}} }

func (r *memRepo) Load(ctx context.Context, key string) ([]cart.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.data[key]
	out := make([]cart.Line, len(lines))
	copy(out, lines)
	return out, nil
}

func (r *memRepo) Save(ctx context.Context, key string, lines []cart.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]cart.Line, len(lines))
	copy(stored, lines)
	r.data[key] = stored
	return nil
}

func (r *memRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fixture struct {
	source   *storeSource
	catalog  *product.Service
	store    *cart.Store
	checkout *checkout.Service
}

func newFixture(t *testing.T, products ...product.Product) *fixture {
	t.Helper()

	source := newStoreSource(products...)
	catalog := product.NewService(source, testLogger())
	require.NoError(t, catalog.LoadAll(context.Background()))

	store := cart.NewStore(newMemRepo(), catalog, testLogger())
	require.NoError(t, store.SwitchIdentity(context.Background(), &identity.Identity{ID: "7", Role: identity.RoleCustomer}))

	return &fixture{
		source:   source,
		catalog:  catalog,
		store:    store,
		checkout: checkout.NewService(catalog, testLogger()),
	}
}

func (f *fixture) add(t *testing.T, id string, quantity int) {
	t.Helper()

	ctx := context.Background()
	p, ok := f.catalog.GetByID(id)
	require.True(t, ok)
	require.NoError(t, f.store.AddLine(ctx, p))
	if quantity > 1 {
		_, err := f.store.SetQuantity(ctx, id, quantity-1)
		require.NoError(t, err)
	}
}

func TestFinalizePurchase(t *testing.T) {
	f := newFixture(t,
		product.Product{ID: "p-1", Title: "Sweeper", Price: 25.5, Stock: 4},
		product.Product{ID: "p-2", Title: "Welder", Price: 120, Stock: 2},
	)
	f.add(t, "p-1", 2)
	f.add(t, "p-2", 1)

	result, err := f.checkout.FinalizePurchase(context.Background(), f.store)
	require.NoError(t, err)

	require.Len(t, result.Lines, 2)
	assert.Equal(t, "p-1", result.Lines[0].ProductID)
	assert.Equal(t, 2, result.Lines[0].Quantity)
	assert.InDelta(t, 51.0, result.Lines[0].LineTotal, 1e-9)
	assert.Equal(t, 2, result.Lines[0].RemainingStock)
	assert.Equal(t, 1, result.Lines[1].RemainingStock)
	assert.InDelta(t, 171.0, result.Total, 1e-9)

	// Stock committed at the source and the cart cleared.
	assert.Equal(t, 2, f.source.stock("p-1"))
	assert.Equal(t, 1, f.source.stock("p-2"))
	assert.Empty(t, f.store.Lines())
}

func TestFinalizePurchaseEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkout.FinalizePurchase(context.Background(), f.store)
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestFinalizePurchaseProductGone(t *testing.T) {
	f := newFixture(t,
		product.Product{ID: "p-1", Title: "Sweeper", Price: 25.5, Stock: 4},
	)
	f.add(t, "p-1", 1)

	// The product disappears before checkout.
	f.source.mu.Lock()
	f.source.order = nil
	f.source.records = map[string]product.Product{}
	f.source.mu.Unlock()
	require.NoError(t, f.catalog.LoadAll(context.Background()))

	_, err := f.checkout.FinalizePurchase(context.Background(), f.store)

	var gone *checkout.ProductGoneError
	require.ErrorAs(t, err, &gone)
	assert.Equal(t, "Sweeper", gone.Title)
	// The cart survives a failed checkout.
	assert.Len(t, f.store.Lines(), 1)
}

func TestFinalizePurchaseInsufficientStock(t *testing.T) {
	f := newFixture(t,
		product.Product{ID: "p-1", Title: "Sweeper", Price: 25.5, Stock: 4},
		product.Product{ID: "p-2", Title: "Welder", Price: 120, Stock: 3},
	)
	f.add(t, "p-1", 2)
	f.add(t, "p-2", 3)

	// Another session drains the welder between add and checkout. The cart
	// keeps its quantity; validation is what reports the shortfall.
	f.source.mu.Lock()
	f.source.records["p-2"] = product.Product{ID: "p-2", Title: "Welder", Price: 120, Stock: 1}
	f.source.mu.Unlock()
	require.NoError(t, f.catalog.LoadAll(context.Background()))

	_, err := f.checkout.FinalizePurchase(context.Background(), f.store)

	var insufficient *checkout.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Welder", insufficient.Title)
	assert.Equal(t, 3, insufficient.Requested)
	assert.Equal(t, 1, insufficient.Available)

	// Validation is all-or-nothing: no stock was touched, including the
	// line that would have passed.
	assert.Equal(t, 4, f.source.stock("p-1"))
	assert.Equal(t, 1, f.source.stock("p-2"))
	assert.Len(t, f.store.Lines(), 2)
}

func TestFinalizePurchaseCommitFailureDisclosesCommittedLines(t *testing.T) {
	f := newFixture(t,
		product.Product{ID: "p-1", Title: "Sweeper", Price: 25.5, Stock: 4},
		product.Product{ID: "p-2", Title: "Welder", Price: 120, Stock: 2},
	)
	f.add(t, "p-1", 2)
	f.add(t, "p-2", 1)

	// First decrement succeeds, second is refused by the source.
	f.source.mu.Lock()
	f.source.updatesLeft = 1
	f.source.mu.Unlock()

	_, err := f.checkout.FinalizePurchase(context.Background(), f.store)

	var commitErr *checkout.CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, "p-2", commitErr.Line.ProductID)
	require.Len(t, commitErr.Committed, 1)
	assert.Equal(t, "p-1", commitErr.Committed[0].ProductID)
	assert.ErrorIs(t, err, product.ErrPersistence)

	// The committed decrement is not rolled back; the failed line's stock
	// is untouched and the cart is kept.
	assert.Equal(t, 2, f.source.stock("p-1"))
	assert.Equal(t, 2, f.source.stock("p-2"))
	assert.Len(t, f.store.Lines(), 2)
}
