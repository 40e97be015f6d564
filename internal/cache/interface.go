package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Cache stores JSON encoded values. A miss is reported as found=false with a
// nil error.
type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

const (
	ProductKeyPrefix = "product"
	CartKeyPrefix    = "cart"
)

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

func ProductKey(id uuid.UUID) string {
	return Key(ProductKeyPrefix, id.String())
}

// ProductKeys returns the cache keys of every id, in order.
func ProductKeys(ids ...uuid.UUID) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, ProductKey(id))
	}

	return keys
}
