// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/storefront-core/internal/config"
	"github.com/your-org/storefront-core/internal/domain/checkout"
	"github.com/your-org/storefront-core/internal/domain/product"
	"github.com/your-org/storefront-core/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-core/internal/interfaces/http/middleware"
)

// Deps carries the constructed services the routes are wired to.
type Deps struct {
	DB       *gorm.DB
	Catalog  *product.Service
	Checkout *checkout.Service
	Sessions *handlers.CartSessions
	Config   *config.Config
}

// SetupRoutes wires all API routes
func SetupRoutes(rg *gin.RouterGroup, deps Deps) {
	setupAuthRoutes(rg, deps)
	setupProductRoutes(rg, deps)
	setupCartRoutes(rg, deps)
	setupCheckoutRoutes(rg, deps)
	setupAdminRoutes(rg, deps)
}

func setupAuthRoutes(rg *gin.RouterGroup, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Config)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Config))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}
}

func setupProductRoutes(rg *gin.RouterGroup, deps Deps) {
	productHandler := handlers.NewProductHandler(deps.Catalog, deps.Config)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.POST("/refresh", productHandler.RefreshProducts)
	}
}

func setupCartRoutes(rg *gin.RouterGroup, deps Deps) {
	cartHandler := handlers.NewCartHandler(deps.Sessions, deps.Config)

	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(deps.Config))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateQuantity)
		cart.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

func setupCheckoutRoutes(rg *gin.RouterGroup, deps Deps) {
	checkoutHandler := handlers.NewCheckoutHandler(deps.Checkout, deps.Sessions, deps.Config)

	co := rg.Group("/checkout")
	co.Use(middleware.AuthMiddleware(deps.Config))
	{
		co.POST("", checkoutHandler.FinalizePurchase)
	}
}

func setupAdminRoutes(rg *gin.RouterGroup, deps Deps) {
	productHandler := handlers.NewProductHandler(deps.Catalog, deps.Config)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(deps.Config), middleware.AdminMiddleware())
	{
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
	}
}
