// Package logging is the structured logger shared by the todoapi HTTP and
// gRPC servers, the services and the admin tool. SlogLogger is the only
// implementation; components receive a Logger and tag it with
// With("module", ...).
package logging

import "context"

// Logger takes a message plus alternating key/value args:
//
//	logger.Warn(ctx, "http request", "method", r.Method, "status", 404)
//
// The ctx lets handlers pass request-scoped values through to the handler.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	// Error is used for 5xx responses and server failures.
	Error(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
}
