package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItemLabel is the structured logging key for a work item's display label.
	FieldItemLabel = "item"
	// FieldItemsPath is the structured logging key for the backing item file.
	FieldItemsPath = "items_path"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the next step a user should take after a failure.
	FieldErrorHint = "error_hint"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

type requestIDKey struct{}

// WithRequestID returns a context carrying the supplied correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext reports the correlation identifier stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// correlationHandler stamps correlation_id on every record. The id stored in
// the record's context wins over the fallback fixed at construction.
type correlationHandler struct {
	base     slog.Handler
	fallback string
}

func newCorrelationHandler(base slog.Handler, fallback string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &correlationHandler{base: base, fallback: fallback}
}

func (h *correlationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *correlationHandler) Handle(ctx context.Context, record slog.Record) error {
	id, ok := RequestIDFromContext(ctx)
	if !ok {
		id = h.fallback
	}
	if id != "" {
		record.AddAttrs(slog.String(FieldCorrelationID, id))
	}
	return h.base.Handle(ctx, record)
}

func (h *correlationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &correlationHandler{base: h.base.WithAttrs(attrs), fallback: h.fallback}
}

func (h *correlationHandler) WithGroup(name string) slog.Handler {
	return &correlationHandler{base: h.base.WithGroup(name), fallback: h.fallback}
}
