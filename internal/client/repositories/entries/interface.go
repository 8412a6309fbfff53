package entries

import (
	"context"
)

// Entry is a single stored preference value.
type Entry struct {
	Namespace string
	Kind      string
	Key       string
	Value     string
}

// Repository describes CRUD operations over preference entries.
type Repository interface {
	// Get returns the value and true, or "" and false when absent.
	Get(ctx context.Context, namespace, kind, key string) (string, bool, error)

	// Exists reports whether an entry is present.
	Exists(ctx context.Context, namespace, kind, key string) (bool, error)

	// Upsert inserts the entry or replaces the value of an existing one.
	Upsert(ctx context.Context, e Entry) error

	// Delete removes one entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, namespace, kind, key string) error

	// Clear removes every entry of the namespace.
	Clear(ctx context.Context, namespace string) error

	// List returns all entries of the namespace ordered by kind and key.
	List(ctx context.Context, namespace string) ([]Entry, error)
}
