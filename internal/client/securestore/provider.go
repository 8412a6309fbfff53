package securestore

import (
	"context"
	"crypto/subtle"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/fireflow/internal/client/kvstore"
	"github.com/dmitrijs2005/fireflow/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/cryptox"
)

const saltSize = 16

// KeySpec names a master key and the cipher it is used with.
type KeySpec struct {
	Alias  string
	Cipher cryptox.Cipher
}

// KeyHandle carries derived key material. It never leaves the process.
type KeyHandle struct {
	Alias  string
	Cipher cryptox.Cipher
	key    []byte
}

// Wipe zeroes the key material.
func (h *KeyHandle) Wipe() {
	if h != nil {
		common.WipeByteArray(h.key)
	}
}

// KeyProvider is the source of secure key material.
type KeyProvider interface {
	GetOrCreateMasterKey(ctx context.Context, spec KeySpec) (*KeyHandle, error)
	OpenEncryptedNamespace(ctx context.Context, name string, key *KeyHandle) (kvstore.Store, error)
}

// NamespaceOpener returns the durable store an encrypted namespace is kept in.
type NamespaceOpener func(name string) kvstore.Store

// PassphraseProvider derives master keys from a passphrase.
type PassphraseProvider struct {
	meta       metadata.Repository
	passphrase []byte
	open       NamespaceOpener
}

func NewPassphraseProvider(meta metadata.Repository, passphrase []byte, open NamespaceOpener) *PassphraseProvider {
	return &PassphraseProvider{meta: meta, passphrase: passphrase, open: open}
}

func keyPrefix(alias string) string {
	return "keys/" + alias + "/"
}

// GetOrCreateMasterKey derives the key for spec.Alias. The first call for an
// alias stores a fresh salt, the cipher and the verifier; later calls check
// the derivation against the verifier and keep the stored cipher.
func (p *PassphraseProvider) GetOrCreateMasterKey(ctx context.Context, spec KeySpec) (*KeyHandle, error) {
	if len(p.passphrase) == 0 {
		return nil, fmt.Errorf("%s: no passphrase: %w", spec.Alias, ErrKeyUnavailable)
	}
	prefix := keyPrefix(spec.Alias)

	salt, err := p.meta.Get(ctx, prefix+"salt")
	if err != nil {
		return nil, common.Disk("keys.get_salt", err)
	}
	if salt == nil {
		return p.create(ctx, spec)
	}

	verifier, err := p.meta.Get(ctx, prefix+"verifier")
	if err != nil {
		return nil, common.Disk("keys.get_verifier", err)
	}
	if verifier == nil {
		// create writes the verifier last; a salt without one is an
		// interrupted create and nothing was sealed under it yet.
		return p.create(ctx, spec)
	}
	storedCipher, err := p.meta.Get(ctx, prefix+"cipher")
	if err != nil {
		return nil, common.Disk("keys.get_cipher", err)
	}
	c, err := cryptox.ParseCipher(string(storedCipher))
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", spec.Alias, err, ErrKeyInvalidated)
	}

	master := cryptox.DeriveMasterKey(p.passphrase, salt)
	if subtle.ConstantTimeCompare(cryptox.MakeVerifier(master), verifier) != 1 {
		common.WipeByteArray(master)
		return nil, fmt.Errorf("%s: verifier mismatch: %w", spec.Alias, ErrKeyInvalidated)
	}
	return &KeyHandle{Alias: spec.Alias, Cipher: c, key: master}, nil
}

func (p *PassphraseProvider) create(ctx context.Context, spec KeySpec) (*KeyHandle, error) {
	c, err := cryptox.ParseCipher(string(spec.Cipher))
	if err != nil {
		return nil, err
	}
	prefix := keyPrefix(spec.Alias)
	salt := common.GenerateRandByteArray(saltSize)
	master := cryptox.DeriveMasterKey(p.passphrase, salt)

	ctx = context.WithoutCancel(ctx)
	if err := p.meta.Set(ctx, prefix+"salt", salt); err != nil {
		return nil, common.Disk("keys.set_salt", err)
	}
	if err := p.meta.Set(ctx, prefix+"cipher", []byte(c)); err != nil {
		return nil, common.Disk("keys.set_cipher", err)
	}
	if err := p.meta.Set(ctx, prefix+"verifier", cryptox.MakeVerifier(master)); err != nil {
		return nil, common.Disk("keys.set_verifier", err)
	}
	return &KeyHandle{Alias: spec.Alias, Cipher: c, key: master}, nil
}

// Forget drops the stored material of alias. Values sealed under the old key
// become unreadable; the next GetOrCreateMasterKey starts over.
func (p *PassphraseProvider) Forget(ctx context.Context, alias string) error {
	if err := p.meta.Clear(context.WithoutCancel(ctx), keyPrefix(alias)); err != nil {
		return common.Disk("keys.forget", err)
	}
	return nil
}

// Aliases lists the aliases that have stored material.
func (p *PassphraseProvider) Aliases(ctx context.Context) ([]string, error) {
	pairs, err := p.meta.List(ctx, "keys/")
	if err != nil {
		return nil, common.Disk("keys.list", err)
	}
	var out []string
	for k := range pairs {
		if alias, ok := strings.CutSuffix(strings.TrimPrefix(k, "keys/"), "/salt"); ok {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (p *PassphraseProvider) OpenEncryptedNamespace(_ context.Context, name string, key *KeyHandle) (kvstore.Store, error) {
	return NewEncryptedStore(p.open(name), key)
}
