// Package usecases exposes one small type per user-facing operation. Each is
// a thin delegation over a service or a preference router so that callers
// such as the CLI depend on the operation, not on the storage layout.
package usecases
