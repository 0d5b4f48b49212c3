// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/your-org/storefront-core/internal/config"
	"github.com/your-org/storefront-core/internal/domain/identity"
	"github.com/your-org/storefront-core/internal/domain/user"
)

// Migration handles schema migrations and seed data
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration runner
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{db: db}
}

// RunAutoMigrations migrates the account schema
func (m *Migration) RunAutoMigrations() error {
	if err := m.db.AutoMigrate(&user.User{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// SeedAdminUser creates the initial admin account if it does not exist
func (m *Migration) SeedAdminUser(cfg *config.Config) error {
	var existing user.User
	err := m.db.Where("email = ?", cfg.Security.SeedAdminEmail).First(&existing).Error
	if err == nil {
		return nil // Already seeded
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Security.SeedAdminPassword), cfg.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := user.User{
		Name:     "Administrator",
		Email:    cfg.Security.SeedAdminEmail,
		Password: string(hash),
		Role:     identity.RoleAdmin,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	return nil
}
