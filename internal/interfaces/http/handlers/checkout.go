// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-core/internal/config"
	"github.com/your-org/storefront-core/internal/domain/checkout"
	"github.com/your-org/storefront-core/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	sessions        *CartSessions
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, sessions *CartSessions, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		sessions:        sessions,
		config:          cfg,
	}
}

// FinalizePurchase handles POST /checkout: validate the order form, then
// run the two-phase purchase over the caller's cart.
func (h *CheckoutHandler) FinalizePurchase(c *gin.Context) {
	var form checkout.OrderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required order data",
			"details": err.Error(),
		})
		return
	}

	if err := form.Validate(); err != nil {
		var vErr *checkout.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": vErr.Message,
				"field": vErr.Field,
			})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
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

	result, err := h.checkoutService.FinalizePurchase(c.Request.Context(), store)
	if err != nil {
		h.respondPurchaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase completed successfully",
		"data":    result,
	})
}

func (h *CheckoutHandler) respondPurchaseError(c *gin.Context, err error) {
	var (
		goneErr   *checkout.ProductGoneError
		stockErr  *checkout.InsufficientStockError
		commitErr *checkout.CommitError
	)

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "The cart is empty",
		})
	case errors.As(err, &goneErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": "A product in your cart no longer exists",
			"title": goneErr.Title,
		})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Not enough stock for a product in your cart",
			"title":     stockErr.Title,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &commitErr):
		// Partial effect: some lines may already be committed. Disclose
		// them instead of pretending the purchase never started.
		c.JSON(http.StatusBadGateway, gin.H{
			"error":           "The purchase could not be completed",
			"failed_line":     commitErr.Line.Title,
			"committed_lines": commitErr.Committed,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "The purchase could not be completed",
		})
	}
}
