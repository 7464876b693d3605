package http

import (
	"context"
	"log/slog"

	"github.com/example/workspace-booking/internal/logging"
)

type contextKey string

const actorContextKey contextKey = "actor"

// ContextWithActor returns a derived context carrying the acting employee id.
func ContextWithActor(ctx context.Context, employeeID string) context.Context {
	return context.WithValue(ctx, actorContextKey, employeeID)
}

// ActorFromContext extracts the acting employee id if one was supplied.
func ActorFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(actorContextKey).(string)
	return id, ok && id != ""
}

// ContextWithLogger attaches a request-scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request-scoped logger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
