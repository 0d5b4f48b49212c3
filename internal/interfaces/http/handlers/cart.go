// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-core/internal/config"
	"github.com/your-org/storefront-core/internal/domain/cart"
	"github.com/your-org/storefront-core/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints. It translates the cart store's error
// taxonomy into user-facing outcomes: soft signals (already in cart, stock
// ceiling) stay 200 with an informational message, real failures get error
// statuses.
type CartHandler struct {
	sessions *CartSessions
	config   *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(sessions *CartSessions, cfg *config.Config) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		config:   cfg,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// UpdateQuantityRequest represents a quantity delta for a cart line
type UpdateQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	store, err := h.sessions.StoreFor(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"items":  store.Lines(),
			"totals": store.CalculateTotals(),
		},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store, err := h.sessions.StoreFor(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	p, ok := h.sessions.catalog.GetByID(req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	err = store.AddLine(c.Request.Context(), p)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("%s added to cart", p.Title),
			"data":    store.Lines(),
		})
	case errors.Is(err, cart.ErrAlreadyInCart):
		c.JSON(http.StatusOK, gin.H{
			"message": "This product is already in your cart",
			"data":    store.Lines(),
		})
	case errors.Is(err, cart.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "You must be logged in to add products to the cart",
		})
	case errors.Is(err, cart.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{
			"error": "No stock available",
		})
	case errors.Is(err, cart.ErrInvalidPrice):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "This product has no valid price",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update cart",
		})
	}
}

// UpdateQuantity handles PUT /cart/items/:id
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store, err := h.sessions.StoreFor(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	line, err := store.SetQuantity(c.Request.Context(), c.Param("id"), req.Delta)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Quantity for %s is now %d", line.Title, line.Quantity),
			"data":    store.Lines(),
		})
	case errors.Is(err, cart.ErrStockCeilingReached):
		c.JSON(http.StatusOK, gin.H{
			"message": "No more stock available for this product",
			"data":    store.Lines(),
		})
	case errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "This product is not in your cart",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update cart",
		})
	}
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	store, err := h.sessions.StoreFor(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	removed, found, err := store.RemoveLine(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update cart",
		})
		return
	}

	message := "This product was not in your cart"
	if found {
		message = fmt.Sprintf("%s removed from cart", removed.Title)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    store.Lines(),
	})
}

// ClearCart handles DELETE /cart: the explicit "empty my cart" user action.
func (h *CartHandler) ClearCart(c *gin.Context) {
	store, err := h.sessions.StoreFor(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	dropped, err := store.Empty(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to empty cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Cart emptied, %d line(s) removed", dropped),
	})
}
