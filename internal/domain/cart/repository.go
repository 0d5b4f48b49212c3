// internal/domain/cart/repository.go
package cart

import "context"

// Repository persists one cart record per identity key. The store writes
// through after every mutation and reads back on identity switches.
type Repository interface {
	Load(ctx context.Context, key string) ([]Line, error)
	Save(ctx context.Context, key string, lines []Line) error
	Delete(ctx context.Context, key string) error
}
