// Package users persists User records in the users table, the later schema
// revision of accounts. It adds the external profile identifier, the
// connectivity notification switch and a third prune predicate for token
// rows whose profile was never fetched.
//
// A row with a NULL server address is a local user.
package users
