package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-core/internal/config"
	"github.com/your-org/storefront-core/internal/domain/cart"
	"github.com/your-org/storefront-core/internal/domain/checkout"
	"github.com/your-org/storefront-core/internal/domain/identity"
	"github.com/your-org/storefront-core/internal/domain/product"
	"github.com/your-org/storefront-core/internal/interfaces/http/handlers"
)

type stubSource struct {
	mu       sync.Mutex
	products []product.Product
}

func (s *stubSource) FetchAll(ctx context.Context) ([]product.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]product.RawProduct, len(s.products))
	for i, p := range s.products {
		out[i] = product.RawProduct{
			ID:    p.ID,
			Title: p.Title,
			Price: []byte(fmt.Sprintf("%g", p.Price)),
			Stock: []byte(fmt.Sprintf("%d", p.Stock)),
		}
	}
	return out, nil
}

func (s *stubSource) Fetch(ctx context.Context, id string) (product.RawProduct, error) {
	return product.RawProduct{}, errors.New("not implemented")
}

func (s *stubSource) Update(ctx context.Context, p product.Product) (product.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
		}
	}
	return product.RawProduct{
		ID:    p.ID,
		Title: p.Title,
		Price: []byte(fmt.Sprintf("%g", p.Price)),
		Stock: []byte(fmt.Sprintf("%d", p.Stock)),
	}, nil
}

func (s *stubSource) Create(ctx context.Context, p product.Product) (product.RawProduct, error) {
	return product.RawProduct{}, errors.New("not implemented")
}

func (s *stubSource) Delete(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

func (s *stubSource) set(products []product.Product) {
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
}

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

// env wires real domain services behind a gin router, with the identity
// middleware replaced by a fixed identity.
type env struct {
	source  *stubSource
	catalog *product.Service
	router  *gin.Engine
}

func newEnv(t *testing.T, ident *identity.Identity, products ...product.Product) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	source := &stubSource{products: products}
	catalog := product.NewService(source, testLogger())
	require.NoError(t, catalog.LoadAll(context.Background()))

	sessions := handlers.NewCartSessions(newMemRepo(), catalog, testLogger())
	cfg := &config.Config{}

	cartHandler := handlers.NewCartHandler(sessions, cfg)
	checkoutHandler := handlers.NewCheckoutHandler(checkout.NewService(catalog, testLogger()), sessions, cfg)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if ident != nil {
			c.Set("identity", ident)
		}
		c.Next()
	})
	router.GET("/cart", cartHandler.GetCart)
	router.POST("/cart/items", cartHandler.AddToCart)
	router.PUT("/cart/items/:id", cartHandler.UpdateQuantity)
	router.DELETE("/cart/items/:id", cartHandler.RemoveFromCart)
	router.DELETE("/cart", cartHandler.ClearCart)
	router.POST("/checkout", checkoutHandler.FinalizePurchase)

	return &env{source: source, catalog: catalog, router: router}
}

func (e *env) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var parsed map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func sweeper() product.Product {
	return product.Product{ID: "p-1", Title: "Sweeper", Price: 25.5, Stock: 4}
}

func TestAddToCart(t *testing.T) {
	e := newEnv(t, &identity.Identity{ID: "7", Role: identity.RoleCustomer}, sweeper())

	rec, body := e.do(t, http.MethodPost, "/cart/items", gin.H{"product_id": "p-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sweeper added to cart", body["message"])

	rec, body = e.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["items"], 1)
	totals := data["totals"].(map[string]interface{})
	assert.Equal(t, float64(1), totals["total_quantity"])
	assert.InDelta(t, 25.5, totals["total"], 1e-9)
}

func TestAddToCartAsGuest(t *testing.T) {
	e := newEnv(t, nil, sweeper())

	rec, body := e.do(t, http.MethodPost, "/cart/items", gin.H{"product_id": "p-1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, body["error"], "logged in")
}

func TestAddToCartUnknownProduct(t *testing.T) {
	e := newEnv(t, &identity.Identity{ID: "7", Role: identity.RoleCustomer}, sweeper())

	rec, _ := e.do(t, http.MethodPost, "/cart/items", gin.H{"product_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddToCartTwice(t *testing.T) {
	e := newEnv(t, &identity.Identity{ID: "7", Role: identity.RoleCustomer}, sweeper())

	rec, _ := e.do(t, http.MethodPost, "/cart/items", gin.H{"product_id": "p-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := e.do(t, http.MethodPost, "/cart/items", gin.H{"product_id": "p-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "This product is already in your cart", body["message"])
	assert.Len(t, body["data"], 1)
}

func TestUpdateQuantity(t *testing.T) {
	e := newEnv(t, &identity.Identity{ID: "7", Role: identity.RoleCustomer}, sweeper())
	e.do(t, http.MethodPost, "/cart/items", gin.H{"product_id": "p-1"})

	// Overshooting clamps to the stock ceiling of 4.
	rec, body := e.do(t, http.MethodPut, "/cart/items/p-1", gin.H{"delta": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Quantity for Sweeper is now 4", body["message"])

	// At the ceiling a further increment is a soft no-op.
	rec, body = e.do(t, http.MethodPut, "/cart/items/p-1", gin.H{"delta": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No more stock available for this product", body["message"])

	rec, _ = e.do(t, http.MethodPut, "/cart/items/missing", gin.H{"delta": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveFromCart(t *testing.T) {
	e := newEnv(t, &identity.Identity{ID: "7", Role: identity.RoleCustomer}, sweeper())
	e.do(t, http.MethodPost, "/cart/items", gin.H{"product_id": "p-1"})

	rec, body := e.do(t, http.MethodDelete, "/cart/items/p-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sweeper removed from cart", body["message"])

	rec, body = e.do(t, http.MethodDelete, "/cart/items/p-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "This product was not in your cart", body["message"])
}

func TestClearCart(t *testing.T) {
	e := newEnv(t, &identity.Identity{ID: "7", Role: identity.RoleCustomer}, sweeper())
	e.do(t, http.MethodPost, "/cart/items", gin.H{"product_id": "p-1"})

	rec, body := e.do(t, http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart emptied, 1 line(s) removed", body["message"])
}

func TestCatalogChangeReconcilesSessions(t *testing.T) {
	e := newEnv(t, &identity.Identity{ID: "7", Role: identity.RoleCustomer}, sweeper())
	e.do(t, http.MethodPost, "/cart/items", gin.H{"product_id": "p-1"})
	e.do(t, http.MethodPut, "/cart/items/p-1", gin.H{"delta": 3})

	// Stock drops upstream; the reload notification re-clamps live carts.
	e.source.set([]product.Product{{ID: "p-1", Title: "Sweeper", Price: 25.5, Stock: 2}})
	require.NoError(t, e.catalog.LoadAll(context.Background()))

	rec, body := e.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	line := items[0].(map[string]interface{})
	assert.Equal(t, float64(2), line["quantity"])
}
