package catalogapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-core/internal/config"
	"github.com/your-org/storefront-core/internal/domain/product"
	"github.com/your-org/storefront-core/internal/infrastructure/catalogapi"
)

func newTestClient(t *testing.T, handler http.Handler) *catalogapi.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Catalog.BaseURL = server.URL + "/products"
	cfg.Catalog.RequestTimeout = 5 * time.Second
	return catalogapi.NewClient(cfg)
}

func TestFetchAll(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"p-1","title":"Sweeper","price":"$1,299.90","stock":"4"},
			{"id":"p-2","title":"Welder","price":120,"stock":0}
		]`))
	}))

	raws, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2)

	// String-typed price and stock survive the trip for later sanitizing.
	p := raws[0].Sanitize()
	assert.Equal(t, 1299.90, p.Price)
	assert.Equal(t, 4, p.Stock)
}

func TestFetchAllUpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestUpdate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/p-1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body product.Product
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 2, body.Stock)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))

	raw, err := client.Update(context.Background(), product.Product{ID: "p-1", Title: "Sweeper", Price: 25.5, Stock: 2})
	require.NoError(t, err)
	assert.Equal(t, "p-1", raw.ID)
	assert.Equal(t, 2, raw.Sanitize().Stock)
}

func TestCreateAndDelete(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/products", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"p-9","title":"Drill","price":80,"stock":2}`))
		case http.MethodDelete:
			assert.Equal(t, "/products/p-9", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))

	raw, err := client.Create(context.Background(), product.Product{Title: "Drill", Price: 80, Stock: 2})
	require.NoError(t, err)
	assert.Equal(t, "p-9", raw.ID)

	require.NoError(t, client.Delete(context.Background(), "p-9"))
}
