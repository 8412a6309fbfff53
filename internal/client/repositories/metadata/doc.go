// Package metadata persists client bookkeeping values in the metadata table.
//
// The secure preference store keeps its key material here: per alias, the
// argon2 salt, the key verifier and the cipher name. None of these values is
// secret on its own.
package metadata
