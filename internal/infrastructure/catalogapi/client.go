// internal/infrastructure/catalogapi/client.go
package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/your-org/storefront-core/internal/config"
	"github.com/your-org/storefront-core/internal/domain/product"
)

// Client talks to the remote product source over its REST surface:
// GET /products, GET /products/{id}, PUT /products/{id}, POST /products,
// DELETE /products/{id}. It implements product.Source.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a product source client from configuration
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.Catalog.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Catalog.RequestTimeout,
		},
	}
}

// FetchAll retrieves the full raw product list
func (c *Client) FetchAll(ctx context.Context) ([]product.RawProduct, error) {
	var raws []product.RawProduct
	if err := c.do(ctx, http.MethodGet, c.baseURL, nil, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

// Fetch retrieves a single raw product by id
func (c *Client) Fetch(ctx context.Context, id string) (product.RawProduct, error) {
	var raw product.RawProduct
	if err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, &raw); err != nil {
		return product.RawProduct{}, err
	}
	return raw, nil
}

// Update PUTs the full product body and returns the stored record
func (c *Client) Update(ctx context.Context, p product.Product) (product.RawProduct, error) {
	var raw product.RawProduct
	if err := c.do(ctx, http.MethodPut, c.itemURL(p.ID), p, &raw); err != nil {
		return product.RawProduct{}, err
	}
	return raw, nil
}

// Create POSTs a new product and returns the created record
func (c *Client) Create(ctx context.Context, p product.Product) (product.RawProduct, error) {
	var raw product.RawProduct
	if err := c.do(ctx, http.MethodPost, c.baseURL, p, &raw); err != nil {
		return product.RawProduct{}, err
	}
	return raw, nil
}

// Delete removes a product at the source
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, id)
}

func (c *Client) do(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("product source request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("product source returned status %d for %s %s", resp.StatusCode, method, url)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode product source response: %w", err)
	}
	return nil
}
