// Package accounts persists Account records in the accounts table.
//
// Optional text columns are NULL when the domain value is "". The credential
// columns map to a models.Authentication: client id and secret together make
// an OAuth credential, a lone access token makes a PAT.
//
// Every write publishes on notify.TableTopic("accounts") so that the
// Observe* streams re-read.
package accounts
