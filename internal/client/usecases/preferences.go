package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fireflow/internal/client/kvstore"
	"github.com/dmitrijs2005/fireflow/internal/client/preferences"
)

var errStreamClosed = errors.New("stream closed before the first value")

// Preference addresses one stored value: the same key may hold one value per
// kind in every tier.
type Preference struct {
	Tier preferences.Tier
	Kind kvstore.Kind
	Key  string
}

func (p Preference) String() string {
	return fmt.Sprintf("%s/%s/%s", p.Tier, p.Kind, p.Key)
}

func unknownKind[T any](k kvstore.Kind) <-chan kvstore.Result[T] {
	ch := make(chan kvstore.Result[T], 1)
	ch <- kvstore.Result[T]{Err: fmt.Errorf("unknown preference kind %q", k)}
	close(ch)
	return ch
}

// first reads the current value of a stream and releases it.
func first[T any](ctx context.Context, open func(context.Context) <-chan kvstore.Result[T]) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r, ok := <-open(ctx)
	if !ok {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, errStreamClosed
	}
	return r.Value, r.Err
}

// formatted renders every element of in as its stored text.
func formatted[T kvstore.Value](ctx context.Context, in <-chan kvstore.Result[T]) <-chan kvstore.Result[string] {
	out := make(chan kvstore.Result[string])
	go func() {
		defer close(out)
		for r := range in {
			s := kvstore.Result[string]{Err: r.Err}
			if r.Err == nil {
				s.Value = kvstore.Format(r.Value)
			}
			select {
			case out <- s:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

type ContainsPreference struct{ contains *preferences.ContainsRouter }

func NewContainsPreference(r *preferences.ContainsRouter) *ContainsPreference {
	return &ContainsPreference{contains: r}
}

func (u *ContainsPreference) Invoke(ctx context.Context, p Preference) (bool, error) {
	return first(ctx, func(ctx context.Context) <-chan kvstore.Result[bool] {
		return u.Watch(ctx, p)
	})
}

func (u *ContainsPreference) Watch(ctx context.Context, p Preference) <-chan kvstore.Result[bool] {
	switch p.Kind {
	case kvstore.Bool:
		return u.contains.Bool(ctx, p.Tier, p.Key)
	case kvstore.Int:
		return u.contains.Int(ctx, p.Tier, p.Key)
	case kvstore.Long:
		return u.contains.Long(ctx, p.Tier, p.Key)
	case kvstore.Float:
		return u.contains.Float(ctx, p.Tier, p.Key)
	case kvstore.String:
		return u.contains.String(ctx, p.Tier, p.Key)
	}
	return unknownKind[bool](p.Kind)
}

// GetPreference reads a value as text. An absent value is reported with
// common.ErrPreferenceNotFound.
type GetPreference struct{ get *preferences.GetRouter }

func NewGetPreference(r *preferences.GetRouter) *GetPreference {
	return &GetPreference{get: r}
}

func (u *GetPreference) Invoke(ctx context.Context, p Preference) (string, error) {
	return first(ctx, func(ctx context.Context) <-chan kvstore.Result[string] {
		return u.Watch(ctx, p)
	})
}

func (u *GetPreference) Watch(ctx context.Context, p Preference) <-chan kvstore.Result[string] {
	switch p.Kind {
	case kvstore.Bool:
		return formatted(ctx, u.get.Bool(ctx, p.Tier, p.Key))
	case kvstore.Int:
		return formatted(ctx, u.get.Int(ctx, p.Tier, p.Key))
	case kvstore.Long:
		return formatted(ctx, u.get.Long(ctx, p.Tier, p.Key))
	case kvstore.Float:
		return formatted(ctx, u.get.Float(ctx, p.Tier, p.Key))
	case kvstore.String:
		return u.get.String(ctx, p.Tier, p.Key)
	}
	return unknownKind[string](p.Kind)
}

// SavePreference parses value according to the preference kind and stores
// it. A value that does not parse is rejected before anything is written.
type SavePreference struct{ save *preferences.SaveRouter }

func NewSavePreference(r *preferences.SaveRouter) *SavePreference {
	return &SavePreference{save: r}
}

func (u *SavePreference) Invoke(ctx context.Context, p Preference, value string) error {
	switch p.Kind {
	case kvstore.Bool:
		v, err := kvstore.Parse[bool](value)
		if err != nil {
			return err
		}
		return u.save.Bool(ctx, p.Tier, p.Key, v)
	case kvstore.Int:
		v, err := kvstore.Parse[int32](value)
		if err != nil {
			return err
		}
		return u.save.Int(ctx, p.Tier, p.Key, v)
	case kvstore.Long:
		v, err := kvstore.Parse[int64](value)
		if err != nil {
			return err
		}
		return u.save.Long(ctx, p.Tier, p.Key, v)
	case kvstore.Float:
		v, err := kvstore.Parse[float32](value)
		if err != nil {
			return err
		}
		return u.save.Float(ctx, p.Tier, p.Key, v)
	case kvstore.String:
		return u.save.String(ctx, p.Tier, p.Key, value)
	}
	return fmt.Errorf("unknown preference kind %q", p.Kind)
}

type RemovePreference struct{ remove *preferences.RemoveRouter }

func NewRemovePreference(r *preferences.RemoveRouter) *RemovePreference {
	return &RemovePreference{remove: r}
}

func (u *RemovePreference) Invoke(ctx context.Context, p Preference) error {
	switch p.Kind {
	case kvstore.Bool:
		return u.remove.Bool(ctx, p.Tier, p.Key)
	case kvstore.Int:
		return u.remove.Int(ctx, p.Tier, p.Key)
	case kvstore.Long:
		return u.remove.Long(ctx, p.Tier, p.Key)
	case kvstore.Float:
		return u.remove.Float(ctx, p.Tier, p.Key)
	case kvstore.String:
		return u.remove.String(ctx, p.Tier, p.Key)
	}
	return fmt.Errorf("unknown preference kind %q", p.Kind)
}

// All clears every value of the tier.
func (u *RemovePreference) All(ctx context.Context, tier preferences.Tier) error {
	return u.remove.All(ctx, tier)
}
