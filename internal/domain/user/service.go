// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-core/internal/config"
	"github.com/your-org/storefront-core/internal/domain/identity"
	"github.com/your-org/storefront-core/internal/pkg/auth"
)

var (
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for unknown emails or wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service handles account business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	passwords *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		passwords: auth.NewPasswordManager(cfg),
	}
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account. The role defaults to customer; admin
// accounts are only created through seeding or by an existing admin.
func (s *Service) Register(req *RegisterRequest) (*User, error) {
	var existing User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     identity.RoleCustomer,
	}
	if err := s.db.Create(u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

// Login verifies credentials and returns the account.
func (s *Service) Login(req *LoginRequest) (*User, error) {
	var u User
	if err := s.db.Where("email = ?", req.Email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.passwords.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &u, nil
}

// GetByID retrieves an account by id.
func (s *Service) GetByID(id uint) (*User, error) {
	var u User
	if err := s.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, fmt.Errorf("user %d not found: %w", id, err)
	}
	return &u, nil
}
