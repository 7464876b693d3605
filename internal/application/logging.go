package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/logging"
)

// operationLogger prefers the request-scoped logger and tags it with the
// operation and resource kind.
func operationLogger(ctx context.Context, base *slog.Logger, operation string, kind booking.Kind, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := make([]any, 0, 4+len(attrs))
	pairs = append(pairs, "service", "BookingService", "operation", operation)
	if kind != "" {
		pairs = append(pairs, "kind", string(kind))
	}
	return logger.With(append(pairs, attrs...)...)
}

// ErrorKind maps every error class to a stable label for logs and replies.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, booking.ErrPolicyViolation):
		return "policy_violation"
	case errors.Is(err, booking.ErrResourceConflict):
		return "resource_conflict"
	case errors.Is(err, booking.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, booking.ErrStorage), errors.Is(err, context.DeadlineExceeded):
		return "storage"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
