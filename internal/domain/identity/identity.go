// internal/domain/identity/identity.go
package identity

// Role of an authenticated user.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Identity is what the authentication layer supplies to the rest of the
// system: an opaque user id and a role. A nil *Identity means guest.
type Identity struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Key returns the cart partition key for this identity. Guests share the
// distinguished "guest" partition.
func Key(i *Identity) string {
	if i == nil || i.ID == "" {
		return "guest"
	}
	return "user:" + i.ID
}
