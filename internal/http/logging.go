package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// requestLogger returns the request-scoped logger, or fallback, tagged with
// the handler operation and the {kind} path segment when present.
func requestLogger(r *http.Request, fallback *slog.Logger, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(r.Context())
	if logger == nil {
		logger = fallback
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"handler", "ReservationHandler", "operation", operation}
	if kind := chi.URLParam(r, "kind"); kind != "" {
		pairs = append(pairs, "kind", kind)
	}
	return logger.With(append(pairs, attrs...)...)
}
