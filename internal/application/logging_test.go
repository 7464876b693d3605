package application

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/logging"
)

func TestOperationLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&base, nil))
	ctx := logging.ContextWithLogger(context.Background(), slog.New(slog.NewJSONHandler(&scoped, nil)))

	operationLogger(ctx, baseLogger, "CreateReservation", booking.KindDesk, "resource_id", "D1").Info("done")

	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %s", base.String())
	}
	for _, want := range []string{`"service":"BookingService"`, `"operation":"CreateReservation"`, `"kind":"desk"`, `"resource_id":"D1"`} {
		if !strings.Contains(scoped.String(), want) {
			t.Fatalf("missing %s in %s", want, scoped.String())
		}
	}
}

func TestOperationLoggerFallsBack(t *testing.T) {
	t.Parallel()

	var base bytes.Buffer
	operationLogger(context.Background(), slog.New(slog.NewJSONHandler(&base, nil)), "FindAvailable", "").Info("done")

	if strings.Contains(base.String(), `"kind"`) {
		t.Fatalf("expected no kind attribute, got %s", base.String())
	}
	if !strings.Contains(base.String(), `"operation":"FindAvailable"`) {
		t.Fatalf("missing operation in %s", base.String())
	}

	if operationLogger(context.Background(), nil, "x", "") == nil {
		t.Fatal("expected slog.Default fallback")
	}
}
