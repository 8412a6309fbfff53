package metadata

import (
	"context"
)

// Repository is a small key/value table for client bookkeeping, such as the
// salt and verifier of each master key alias. Keys are plain strings; callers
// scope them with a prefix ("keys/<alias>/salt").
type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// List returns every pair whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string][]byte, error)
	// Clear deletes every pair whose key starts with prefix.
	Clear(ctx context.Context, prefix string) error
}
