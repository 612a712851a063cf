// Package logging is the narrow structured-logging seam the services log
// through. Production wires a slog-backed implementation; tests substitute
// a no-op.
package logging

import "context"

// Logger takes a context and alternating key/value args:
//
//	log.Warn(ctx, "account locked", "username", user.Username, "until", deadline)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying the given key/value pairs on
	// every record it emits.
	With(args ...any) Logger
}
