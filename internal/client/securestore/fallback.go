package securestore

import (
	"context"

	"github.com/dmitrijs2005/fireflow/internal/client/kvstore"
	"github.com/dmitrijs2005/fireflow/internal/logging"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

// FallbackStore serves the secure namespace when it works and the fallback
// store otherwise. secure is set once by NewFallbackStore and only read
// afterwards.
type FallbackStore struct {
	name     string
	secure   kvstore.Store
	fallback kvstore.Store
	log      logging.Logger
}

// NewFallbackStore performs key setup for namespace. A security error leaves
// the store permanently on the fallback. Any other setup error is returned.
func NewFallbackStore(ctx context.Context, provider KeyProvider, spec KeySpec, namespace string, fallback kvstore.Store, log logging.Logger) (*FallbackStore, error) {
	if log == nil {
		log = logging.Nop()
	}
	f := &FallbackStore{
		name:     namespace,
		fallback: fallback,
		log:      log.With("component", "securestore", "namespace", namespace),
	}

	secure, err := openSecure(ctx, provider, spec, namespace)
	switch {
	case err == nil:
		f.secure = secure
	case IsSecurityError(err):
		f.log.Warn(ctx, "secure store unavailable, using fallback", "fallback", fallback.Name(), "error", err)
	default:
		return nil, err
	}
	return f, nil
}

func openSecure(ctx context.Context, provider KeyProvider, spec KeySpec, namespace string) (kvstore.Store, error) {
	key, err := provider.GetOrCreateMasterKey(ctx, spec)
	if err != nil {
		return nil, err
	}
	return provider.OpenEncryptedNamespace(ctx, namespace, key)
}

// Degraded reports whether key setup failed and the fallback serves every call.
func (f *FallbackStore) Degraded() bool {
	return f.secure == nil
}

func route[T any](ctx context.Context, f *FallbackStore, op string, call func(kvstore.Store) (T, error)) (T, error) {
	if f.secure == nil {
		return call(f.fallback)
	}
	v, err := call(f.secure)
	if err != nil && IsSecurityError(err) {
		f.log.Warn(ctx, "secure store rejected call, using fallback", "op", op, "error", err)
		return call(f.fallback)
	}
	return v, err
}

func routeErr(ctx context.Context, f *FallbackStore, op string, call func(kvstore.Store) error) error {
	_, err := route(ctx, f, op, func(s kvstore.Store) (struct{}, error) {
		return struct{}{}, call(s)
	})
	return err
}

func (f *FallbackStore) Name() string { return f.name }

func (f *FallbackStore) Contains(ctx context.Context, kind kvstore.Kind, key string) (bool, error) {
	return route(ctx, f, "contains", func(s kvstore.Store) (bool, error) {
		return s.Contains(ctx, kind, key)
	})
}

func (f *FallbackStore) Get(ctx context.Context, kind kvstore.Kind, key string) ([]byte, error) {
	return route(ctx, f, "get", func(s kvstore.Store) ([]byte, error) {
		return s.Get(ctx, kind, key)
	})
}

func (f *FallbackStore) Set(ctx context.Context, kind kvstore.Kind, key string, raw []byte) error {
	return routeErr(ctx, f, "set", func(s kvstore.Store) error {
		return s.Set(ctx, kind, key, raw)
	})
}

func (f *FallbackStore) Remove(ctx context.Context, kind kvstore.Kind, key string) error {
	return routeErr(ctx, f, "remove", func(s kvstore.Store) error {
		return s.Remove(ctx, kind, key)
	})
}

func (f *FallbackStore) RemoveAll(ctx context.Context) error {
	return routeErr(ctx, f, "remove_all", func(s kvstore.Store) error {
		return s.RemoveAll(ctx)
	})
}

// Changes merges the signals of both sides, since either may serve a read.
func (f *FallbackStore) Changes(ctx context.Context) <-chan struct{} {
	if f.secure == nil {
		return f.fallback.Changes(ctx)
	}
	return notify.Merge(ctx, f.secure.Changes(ctx), f.fallback.Changes(ctx))
}
