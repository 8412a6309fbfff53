// Package securestore provides the encrypted preference tier.
//
// A KeyProvider produces the master key and opens encrypted namespaces over
// it. PassphraseProvider derives the key from a passphrase with argon2id and
// keeps only the salt and a verifier in the metadata table.
//
// FallbackStore decorates the encrypted namespace with a plain fallback. Key
// setup runs once, in NewFallbackStore; if it fails with a security error the
// secure side stays absent and every call goes to the fallback. A security
// error from an individual call is logged and the same call is repeated on
// the fallback. Callers never see security errors.
package securestore
