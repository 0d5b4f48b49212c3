// internal/interfaces/http/handlers/product.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-core/internal/config"
	"github.com/your-org/storefront-core/internal/domain/product"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	catalog *product.Service
	config  *config.Config
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog *product.Service, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		config:  cfg,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": h.catalog.Products(),
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, ok := h.catalog.GetByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": p,
	})
}

// RefreshProducts handles POST /products/refresh: reload the catalog from
// the remote source.
func (h *ProductHandler) RefreshProducts(c *gin.Context) {
	if err := h.catalog.LoadAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to load products from the remote source",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Catalog refreshed",
		"data":    h.catalog.Products(),
	})
}

// ProductRequest represents admin create/update data
type ProductRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Details     string  `json:"details"`
	Image       string  `json:"image"`
	Price       float64 `json:"price" binding:"min=0"`
	Stock       int     `json:"stock" binding:"min=0"`
}

// CreateProduct handles POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	created, err := h.catalog.Create(c.Request.Context(), product.Product{
		Title:       req.Title,
		Description: req.Description,
		Details:     req.Details,
		Image:       req.Image,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to create product at the remote source",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created",
		"data":    created,
	})
}

// UpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.catalog.Update(c.Request.Context(), product.Product{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Details:     req.Details,
		Image:       req.Image,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to update product at the remote source",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated",
		"data":    updated,
	})
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to delete product at the remote source",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted",
	})
}
