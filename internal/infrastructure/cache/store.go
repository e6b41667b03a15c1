package cache

import (
	"context"
	"time"
)

// Store is a key-value cache with expiration. Implementations must be safe
// for concurrent use.
type Store interface {
	// Set stores a value with expiration
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Delete removes a key
	Delete(ctx context.Context, key string) error
}
