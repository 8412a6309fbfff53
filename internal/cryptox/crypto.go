// Package cryptox holds the key derivation and authenticated-encryption
// primitives behind the secure preference store.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the size of master keys and derived subkeys.
const KeySize = 32

// ErrMalformed is returned by Open when the sealed payload is too short to
// carry a nonce.
var ErrMalformed = errors.New("malformed sealed payload")

// Cipher names an AEAD construction for preference values.
type Cipher string

const (
	CipherAESGCM  Cipher = "aes256-gcm"
	CipherXChaCha Cipher = "xchacha20-poly1305"
	DefaultCipher        = CipherAESGCM
)

// ParseCipher validates a cipher name. The empty string selects DefaultCipher.
func ParseCipher(s string) (Cipher, error) {
	switch Cipher(s) {
	case "":
		return DefaultCipher, nil
	case CipherAESGCM, CipherXChaCha:
		return Cipher(s), nil
	}
	return "", fmt.Errorf("unknown cipher %q", s)
}

// MakeVerifier returns a digest of masterKey that can be stored to check a
// later derivation without storing the key itself.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// DeriveMasterKey stretches password with argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// DeriveSubkey derives an independent KeySize key for purpose from master.
func DeriveSubkey(master []byte, purpose string) ([]byte, error) {
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(purpose)), out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewAEAD builds the AEAD for c keyed with key (KeySize bytes).
func NewAEAD(c Cipher, key []byte) (cipher.AEAD, error) {
	switch c {
	case CipherAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case CipherXChaCha:
		return chacha20poly1305.NewX(key)
	}
	return nil, fmt.Errorf("unknown cipher %q", c)
}

// Seal encrypts plaintext under a fresh random nonce bound to aad and returns
// nonce||ciphertext.
func Seal(aead cipher.AEAD, plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Open reverses Seal. Any tampering, a wrong key or a wrong aad yields an
// error from the AEAD.
func Open(aead cipher.AEAD, sealed, aad []byte) ([]byte, error) {
	ns := aead.NonceSize()
	if len(sealed) < ns+aead.Overhead() {
		return nil, ErrMalformed
	}
	return aead.Open(nil, sealed[:ns], sealed[ns:], aad)
}

// NameHash maps a preference key to a stable opaque name, so equal keys
// resolve to the same stored row without revealing the key.
func NameHash(key []byte, name string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(name))
	return hex.EncodeToString(mac.Sum(nil))
}
