package common

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// StateTokenLength is the length of a login correlation token.
const StateTokenLength = 10

const stateAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MakeRandHexString returns size random bytes encoded as hex (2*size chars).
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns n bytes from crypto/rand. It panics if the
// system source fails, which only happens on a broken platform.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Nil-safe.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NewStateToken issues a one-time correlation token used to match an OAuth
// redirect back to its pending row.
func NewStateToken() (string, error) {
	out := make([]byte, StateTokenLength)
	max := big.NewInt(int64(len(stateAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = stateAlphabet[n.Int64()]
	}
	return string(out), nil
}
