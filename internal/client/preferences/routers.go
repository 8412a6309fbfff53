package preferences

import (
	"context"

	"github.com/dmitrijs2005/fireflow/internal/client/kvstore"
)

func failed[T any](err error) <-chan kvstore.Result[T] {
	ch := make(chan kvstore.Result[T], 1)
	ch <- kvstore.Result[T]{Err: err}
	close(ch)
	return ch
}

func observe[T kvstore.Value](ctx context.Context, stores *Stores, tier Tier, key string) <-chan kvstore.Result[T] {
	s, err := stores.For(tier)
	if err != nil {
		return failed[T](err)
	}
	return kvstore.Observe[T](ctx, s, key)
}

func observeContains[T kvstore.Value](ctx context.Context, stores *Stores, tier Tier, key string) <-chan kvstore.Result[bool] {
	s, err := stores.For(tier)
	if err != nil {
		return failed[bool](err)
	}
	return kvstore.ObserveContains[T](ctx, s, key)
}

func save[T kvstore.Value](ctx context.Context, stores *Stores, tier Tier, key string, v T) error {
	s, err := stores.For(tier)
	if err != nil {
		return err
	}
	return kvstore.Set(ctx, s, key, v)
}

func remove[T kvstore.Value](ctx context.Context, stores *Stores, tier Tier, key string) error {
	s, err := stores.For(tier)
	if err != nil {
		return err
	}
	return kvstore.Remove[T](ctx, s, key)
}

// ContainsRouter answers presence questions. Each stream emits the current
// answer and re-emits after writes to the tier.
type ContainsRouter struct{ stores *Stores }

func NewContainsRouter(stores *Stores) *ContainsRouter { return &ContainsRouter{stores: stores} }

func (r *ContainsRouter) Bool(ctx context.Context, tier Tier, key string) <-chan kvstore.Result[bool] {
	return observeContains[bool](ctx, r.stores, tier, key)
}

func (r *ContainsRouter) Int(ctx context.Context, tier Tier, key string) <-chan kvstore.Result[bool] {
	return observeContains[int32](ctx, r.stores, tier, key)
}

func (r *ContainsRouter) Long(ctx context.Context, tier Tier, key string) <-chan kvstore.Result[bool] {
	return observeContains[int64](ctx, r.stores, tier, key)
}

func (r *ContainsRouter) Float(ctx context.Context, tier Tier, key string) <-chan kvstore.Result[bool] {
	return observeContains[float32](ctx, r.stores, tier, key)
}

func (r *ContainsRouter) String(ctx context.Context, tier Tier, key string) <-chan kvstore.Result[bool] {
	return observeContains[string](ctx, r.stores, tier, key)
}

// GetRouter reads values. An absent key arrives as common.ErrPreferenceNotFound.
type GetRouter struct{ stores *Stores }

func NewGetRouter(stores *Stores) *GetRouter { return &GetRouter{stores: stores} }

func (r *GetRouter) Bool(ctx context.Context, tier Tier, key string) <-chan kvstore.Result[bool] {
	return observe[bool](ctx, r.stores, tier, key)
}

func (r *GetRouter) Int(ctx context.Context, tier Tier, key string) <-chan kvstore.Result[int32] {
	return observe[int32](ctx, r.stores, tier, key)
}

func (r *GetRouter) Long(ctx context.Context, tier Tier, key string) <-chan kvstore.Result[int64] {
	return observe[int64](ctx, r.stores, tier, key)
}

func (r *GetRouter) Float(ctx context.Context, tier Tier, key string) <-chan kvstore.Result[float32] {
	return observe[float32](ctx, r.stores, tier, key)
}

func (r *GetRouter) String(ctx context.Context, tier Tier, key string) <-chan kvstore.Result[string] {
	return observe[string](ctx, r.stores, tier, key)
}

// SaveRouter writes values.
type SaveRouter struct{ stores *Stores }

func NewSaveRouter(stores *Stores) *SaveRouter { return &SaveRouter{stores: stores} }

func (r *SaveRouter) Bool(ctx context.Context, tier Tier, key string, v bool) error {
	return save(ctx, r.stores, tier, key, v)
}

func (r *SaveRouter) Int(ctx context.Context, tier Tier, key string, v int32) error {
	return save(ctx, r.stores, tier, key, v)
}

func (r *SaveRouter) Long(ctx context.Context, tier Tier, key string, v int64) error {
	return save(ctx, r.stores, tier, key, v)
}

func (r *SaveRouter) Float(ctx context.Context, tier Tier, key string, v float32) error {
	return save(ctx, r.stores, tier, key, v)
}

func (r *SaveRouter) String(ctx context.Context, tier Tier, key string, v string) error {
	return save(ctx, r.stores, tier, key, v)
}

// RemoveRouter deletes values. Removing an absent key succeeds.
type RemoveRouter struct{ stores *Stores }

func NewRemoveRouter(stores *Stores) *RemoveRouter { return &RemoveRouter{stores: stores} }

func (r *RemoveRouter) Bool(ctx context.Context, tier Tier, key string) error {
	return remove[bool](ctx, r.stores, tier, key)
}

func (r *RemoveRouter) Int(ctx context.Context, tier Tier, key string) error {
	return remove[int32](ctx, r.stores, tier, key)
}

func (r *RemoveRouter) Long(ctx context.Context, tier Tier, key string) error {
	return remove[int64](ctx, r.stores, tier, key)
}

func (r *RemoveRouter) Float(ctx context.Context, tier Tier, key string) error {
	return remove[float32](ctx, r.stores, tier, key)
}

func (r *RemoveRouter) String(ctx context.Context, tier Tier, key string) error {
	return remove[string](ctx, r.stores, tier, key)
}

// All clears the whole tier.
func (r *RemoveRouter) All(ctx context.Context, tier Tier) error {
	s, err := r.stores.For(tier)
	if err != nil {
		return err
	}
	return s.RemoveAll(ctx)
}
