package kvstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

// Store is one preference namespace. Values are addressed by (kind, key)
// and kept in their encoded form; the typed helpers below do the encoding.
//
// Get fails with common.ErrPreferenceNotFound when the entry is absent.
// Remove and RemoveAll succeed when there is nothing to remove.
type Store interface {
	Name() string
	Contains(ctx context.Context, kind Kind, key string) (bool, error)
	Get(ctx context.Context, kind Kind, key string) ([]byte, error)
	Set(ctx context.Context, kind Kind, key string, raw []byte) error
	Remove(ctx context.Context, kind Kind, key string) error
	RemoveAll(ctx context.Context) error

	// Changes signals after every write to the namespace. The channel is
	// closed once ctx is done.
	Changes(ctx context.Context) <-chan struct{}
}

// Result is one element of an Observe stream.
type Result[T any] = notify.Result[T]

func Contains[T Value](ctx context.Context, s Store, key string) (bool, error) {
	return s.Contains(ctx, KindOf[T](), key)
}

// Get reads and decodes a value. A value that does not decode as T is a
// fatal disk error.
func Get[T Value](ctx context.Context, s Store, key string) (T, error) {
	var zero T
	raw, err := s.Get(ctx, KindOf[T](), key)
	if err != nil {
		return zero, err
	}
	v, err := decode[T](raw)
	if err != nil {
		return zero, common.Disk(fmt.Sprintf("%s.decode", s.Name()),
			fmt.Errorf("%s %q: %w", KindOf[T](), key, err))
	}
	return v, nil
}

// GetOr is Get with NotFound replaced by def. Other failures still surface.
func GetOr[T Value](ctx context.Context, s Store, key string, def T) (T, error) {
	v, err := Get[T](ctx, s, key)
	if common.IsNotFound(err) {
		return def, nil
	}
	return v, err
}

func Set[T Value](ctx context.Context, s Store, key string, v T) error {
	return s.Set(ctx, KindOf[T](), key, encode(v))
}

func Remove[T Value](ctx context.Context, s Store, key string) error {
	return s.Remove(ctx, KindOf[T](), key)
}

// Observe emits the current value of key, then re-reads it after every write
// to the namespace. Read failures, NotFound included, arrive as elements.
func Observe[T Value](ctx context.Context, s Store, key string) <-chan Result[T] {
	return notify.Stream(ctx, s.Changes(ctx), func(ctx context.Context) (T, error) {
		return Get[T](ctx, s, key)
	})
}

// ObserveContains is Observe for presence.
func ObserveContains[T Value](ctx context.Context, s Store, key string) <-chan Result[bool] {
	return notify.Stream(ctx, s.Changes(ctx), func(ctx context.Context) (bool, error) {
		return Contains[T](ctx, s, key)
	})
}
