// Package logging defines the structured-logging interface shared by the
// client and the server.
package logging

import "context"

// Logger is a context-aware structured logger. The variadic args are
// alternating key-value pairs:
//
//	log.Info(ctx, "sync completed", "pushed", n, "pulled", m)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value
	// pairs.
	With(args ...any) Logger
}
