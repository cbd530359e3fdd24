// Package logging assembles structured slog loggers and formatting helpers
// used by the fifoq command line.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and stamps every record with the invocation's
// correlation_id. A request id placed on the context with WithRequestID
// overrides the logger-wide one. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
