package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldImportID is the standardized key for import session identifiers.
	FieldImportID = "import_id"
	// FieldContainer is the standardized key for the package being processed.
	FieldContainer = "container"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey string

const (
	importIDKey  contextKey = "import_id"
	containerKey contextKey = "container"
)

// WithImportID tags ctx with an import session identifier.
func WithImportID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, importIDKey, id)
}

// WithContainer tags ctx with the package path being imported.
func WithContainer(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, containerKey, path)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(importIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldImportID, id))
	}
	if path, ok := ctx.Value(containerKey).(string); ok && path != "" {
		fields = append(fields, slog.String(FieldContainer, path))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
