package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	Reservations *ReservationHandler
	// CORSOrigins enables cross-origin requests from the listed origins.
	CORSOrigins []string
	Middleware  []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", ActorHeader},
			ExposedHeaders:   []string{"Retry-After"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	r.Use(Actor)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if h := cfg.Reservations; h != nil {
		r.Route("/api/{kind}", func(r chi.Router) {
			r.Get("/reservations", h.List)
			r.Post("/reservations", h.Create)
			r.Get("/reservations/{id}", h.Get)
			r.Patch("/reservations/{id}", h.Update)
			r.Put("/reservations/{id}", h.Update)
			r.Delete("/reservations/{id}", h.Cancel)
			r.Get("/availability", h.Availability)
			r.Get("/resources/{resourceID}/availability", h.ResourceAvailability)
			r.Get("/employees/{employeeID}/history", h.History)
		})
	}

	return r
}
