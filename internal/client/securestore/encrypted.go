package securestore

import (
	"context"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/fireflow/internal/client/kvstore"
	"github.com/dmitrijs2005/fireflow/internal/cryptox"
)

const (
	namesPurpose  = "fireflow/preferences/names"
	valuesPurpose = "fireflow/preferences/values"
)

// EncryptedStore seals values and hides key names on top of a durable store.
type EncryptedStore struct {
	inner kvstore.Store
	aead  cipher.AEAD
	names []byte
}

func NewEncryptedStore(inner kvstore.Store, key *KeyHandle) (*EncryptedStore, error) {
	if key == nil || len(key.key) == 0 {
		return nil, ErrKeyUnavailable
	}
	names, err := cryptox.DeriveSubkey(key.key, namesPurpose)
	if err != nil {
		return nil, fmt.Errorf("failed to derive name key: %w", err)
	}
	values, err := cryptox.DeriveSubkey(key.key, valuesPurpose)
	if err != nil {
		return nil, fmt.Errorf("failed to derive value key: %w", err)
	}
	aead, err := cryptox.NewAEAD(key.Cipher, values)
	if err != nil {
		return nil, fmt.Errorf("failed to init %s: %w", key.Cipher, err)
	}
	return &EncryptedStore{inner: inner, aead: aead, names: names}, nil
}

func (e *EncryptedStore) Name() string { return e.inner.Name() }

func (e *EncryptedStore) name(kind kvstore.Kind, key string) string {
	return cryptox.NameHash(e.names, string(kind)+":"+key)
}

// aad binds a sealed value to its slot so values cannot be swapped between
// keys or kinds.
func aad(kind kvstore.Kind, hashed string) []byte {
	return []byte(string(kind) + "|" + hashed)
}

func (e *EncryptedStore) Contains(ctx context.Context, kind kvstore.Kind, key string) (bool, error) {
	return e.inner.Contains(ctx, kind, e.name(kind, key))
}

func (e *EncryptedStore) Get(ctx context.Context, kind kvstore.Kind, key string) ([]byte, error) {
	hashed := e.name(kind, key)
	stored, err := e.inner.Get(ctx, kind, hashed)
	if err != nil {
		return nil, err
	}
	sealed, err := base64.StdEncoding.DecodeString(string(stored))
	if err != nil {
		return nil, fmt.Errorf("%s %q: %v: %w", kind, key, err, ErrKeyInvalidated)
	}
	plain, err := cryptox.Open(e.aead, sealed, aad(kind, hashed))
	if err != nil {
		return nil, fmt.Errorf("%s %q: %v: %w", kind, key, err, ErrKeyInvalidated)
	}
	return plain, nil
}

func (e *EncryptedStore) Set(ctx context.Context, kind kvstore.Kind, key string, raw []byte) error {
	hashed := e.name(kind, key)
	sealed, err := cryptox.Seal(e.aead, raw, aad(kind, hashed))
	if err != nil {
		return fmt.Errorf("failed to seal %s %q: %w", kind, key, err)
	}
	return e.inner.Set(ctx, kind, hashed, []byte(base64.StdEncoding.EncodeToString(sealed)))
}

func (e *EncryptedStore) Remove(ctx context.Context, kind kvstore.Kind, key string) error {
	return e.inner.Remove(ctx, kind, e.name(kind, key))
}

func (e *EncryptedStore) RemoveAll(ctx context.Context) error {
	return e.inner.RemoveAll(ctx)
}

func (e *EncryptedStore) Changes(ctx context.Context) <-chan struct{} {
	return e.inner.Changes(ctx)
}
