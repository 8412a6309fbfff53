// Package services holds the account and user lifecycle services: the
// single-current-row rule, patch based updates and the reconciliation of
// rows left behind by interrupted logins.
//
// Every service is backed by a *sql.DB. Operations that touch more than one
// row run in one transaction with repositories bound to that transaction.
package services
