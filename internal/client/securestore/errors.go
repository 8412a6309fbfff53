package securestore

import "errors"

var (
	// ErrKeyUnavailable means no key material can be produced, for example
	// because no passphrase was supplied.
	ErrKeyUnavailable = errors.New("secure key unavailable")

	// ErrKeyInvalidated means the key no longer matches the stored material
	// or a sealed value failed authentication.
	ErrKeyInvalidated = errors.New("secure key invalidated")
)

// IsSecurityError reports whether err belongs to the security class that
// FallbackStore absorbs.
func IsSecurityError(err error) bool {
	return errors.Is(err, ErrKeyUnavailable) || errors.Is(err, ErrKeyInvalidated)
}
