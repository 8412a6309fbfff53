// Package logging defines the structured-logging interface used by the stores
// and services. The default implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger. Logging never affects control
// flow; implementations must not panic on any input.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Warn(ctx, "secure store unavailable", "namespace", ns, "err", err)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}
