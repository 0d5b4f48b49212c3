// internal/domain/user/entity.go
package user

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-core/internal/domain/identity"
)

// User represents a storefront account
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password  string         `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	Role      string         `gorm:"size:20;default:'customer'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to normalize the email before insertion
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(u.Email)
	return nil
}

// Identity returns the identity this account supplies to the cart core.
func (u *User) Identity() *identity.Identity {
	return &identity.Identity{
		ID:   strconv.FormatUint(uint64(u.ID), 10),
		Role: u.Role,
	}
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == identity.RoleAdmin
}
