// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/storefront-core/internal/config"
	"github.com/your-org/storefront-core/internal/domain/checkout"
	"github.com/your-org/storefront-core/internal/domain/product"
	"github.com/your-org/storefront-core/internal/infrastructure/catalogapi"
	"github.com/your-org/storefront-core/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-core/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-core/internal/interfaces/http"
	"github.com/your-org/storefront-core/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-core/internal/interfaces/http/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := middleware.NewLogger(cfg)
	logger.Infof("Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Connect to database
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Health check
	if err := db.Health(); err != nil {
		logger.Fatalf("Database health check failed: %v", err)
	}

	if err := redisClient.Health(); err != nil {
		logger.Fatalf("Redis health check failed: %v", err)
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB())

	if err := migration.RunAutoMigrations(); err != nil {
		logger.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.SeedAdminUser(cfg); err != nil {
		logger.Warnf("Admin seeding failed: %v", err)
	}

	// Build the catalog from the upstream product API
	catalogClient := catalogapi.NewClient(cfg)
	catalog := product.NewService(catalogClient, logger)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Catalog.RequestTimeout)
	if err := catalog.LoadAll(loadCtx); err != nil {
		logger.Warnf("Initial catalog load failed, serving empty catalog until refresh: %v", err)
	}
	cancelLoad()

	// Cart sessions persist per identity in Redis and follow catalog changes
	cartRepo := redis.NewCartRepository(redisClient.GetClient())
	sessions := handlers.NewCartSessions(cartRepo, catalog, logger)

	checkoutSvc := checkout.NewService(catalog, logger)

	logger.Info("All systems operational")

	// Create and start HTTP server
	server := http.NewServer(cfg, logger, db.GetDB(), redisClient.GetClient(), catalog, checkoutSvc, sessions)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	logger.Info("Server shutdown completed")
}
