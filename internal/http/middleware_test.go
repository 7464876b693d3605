package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestRequestLoggerAttachesLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var sawLogger bool
	handler := middleware.RequestID(RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/desk/reservations", nil))

	if !sawLogger {
		t.Fatal("expected request-scoped logger in context")
	}
	out := buf.String()
	for _, want := range []string{`"msg":"request completed"`, `"status":418`, `"path":"/api/desk/reservations"`, `"request_id":"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %s: %s", want, out)
		}
	}
}

func TestActorMiddleware(t *testing.T) {
	t.Parallel()

	var got string
	var ok bool
	handler := Actor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ActorHeader, "  E  ")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !ok || got != "E" {
		t.Fatalf("ActorFromContext = %q, %v; want E, true", got, ok)
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if ok {
		t.Fatalf("expected no actor without header, got %q", got)
	}
}
