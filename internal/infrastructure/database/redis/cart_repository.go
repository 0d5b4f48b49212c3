// internal/infrastructure/database/redis/cart_repository.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-core/internal/domain/cart"
)

// Cart partitions live as one JSON record per identity key and survive
// across sessions, like the browser-local storage they replace.
const cartTTL = 30 * 24 * time.Hour

// CartRepository implements cart.Repository on Redis.
type CartRepository struct {
	client *redis.Client
}

// NewCartRepository creates a new cart repository
func NewCartRepository(client *redis.Client) *CartRepository {
	return &CartRepository{client: client}
}

type cartRecord struct {
	Key       string      `json:"key"`
	Lines     []cart.Line `json:"lines"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func cartKey(key string) string {
	return "cart:" + key
}

// Load reads the partition for the given identity key. A missing record is
// an empty cart, not an error.
func (r *CartRepository) Load(ctx context.Context, key string) ([]cart.Line, error) {
	data, err := r.client.Get(ctx, cartKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart %q: %w", key, err)
	}

	var record cartRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to decode cart %q: %w", key, err)
	}
	return record.Lines, nil
}

// Save writes the partition, replacing any previous record.
func (r *CartRepository) Save(ctx context.Context, key string, lines []cart.Line) error {
	record := cartRecord{
		Key:       key,
		Lines:     lines,
		UpdatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode cart %q: %w", key, err)
	}

	if err := r.client.Set(ctx, cartKey(key), data, cartTTL).Err(); err != nil {
		return fmt.Errorf("failed to write cart %q: %w", key, err)
	}
	return nil
}

// Delete drops the partition record entirely.
func (r *CartRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, cartKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart %q: %w", key, err)
	}
	return nil
}
