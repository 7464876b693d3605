package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
)

type bookingService interface {
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (booking.Reservation, error)
	UpdateReservation(ctx context.Context, params application.UpdateReservationParams) (booking.Reservation, error)
	CancelReservation(ctx context.Context, params application.CancelReservationParams) error
	GetReservation(ctx context.Context, kind booking.Kind, id string) (booking.Reservation, error)
	ListReservations(ctx context.Context, params application.ListReservationsParams) ([]booking.Reservation, error)
	History(ctx context.Context, kind booking.Kind, employeeID string) ([]booking.Reservation, error)
	FindAvailable(ctx context.Context, query application.AvailabilityQuery) ([]string, error)
	IsAvailable(ctx context.Context, kind booking.Kind, resourceID string, date time.Time, interval booking.Interval) (bool, error)
	FreeSlots(ctx context.Context, kind booking.Kind, resourceID string, date time.Time, window booking.Interval) ([]booking.Interval, error)
}

// ReservationHandler serves the reservation endpoints of every resource kind.
type ReservationHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewReservationHandler(service bookingService, logger *slog.Logger) *ReservationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReservationHandler{service: service, responder: newResponder(logger), logger: logger}
}

func (h *ReservationHandler) log(r *http.Request, operation string, attrs ...any) *slog.Logger {
	return requestLogger(r, h.logger, operation, attrs...)
}

// kind resolves the {kind} path segment, writing a 404 when it is unknown.
func (h *ReservationHandler) kind(w http.ResponseWriter, r *http.Request) (booking.Kind, bool) {
	kind, err := booking.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errUnknownKind)
		return "", false
	}
	return kind, true
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	vErr := &application.ValidationError{}
	params := application.ListReservationsParams{
		Kind:       kind,
		EmployeeID: strings.TrimSpace(query.Get("employee_id")),
		ResourceID: strings.TrimSpace(query.Get("resource_id")),
	}
	if from := parseDateField(vErr, query.Get("from")); !from.IsZero() {
		params.From = &from
	}
	if to := parseDateField(vErr, query.Get("to")); !to.IsZero() {
		params.To = &to
	}
	if vErr.HasErrors() {
		h.responder.handleServiceError(ctx, w, vErr)
		return
	}

	reservations, err := h.service.ListReservations(ctx, params)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(r, "List", "count", len(reservations)).DebugContext(ctx, "listed reservations")
	h.responder.writeJSON(ctx, w, http.StatusOK, reservationListResponse(reservations))
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r, "Create").WarnContext(ctx, "failed to decode request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if strings.TrimSpace(req.EmployeeID) == "" {
		if actor, ok := ActorFromContext(ctx); ok {
			req.EmployeeID = actor
		}
	}

	params, err := req.toParams(kind)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	reservation, err := h.service.CreateReservation(ctx, params)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusCreated, newReservationDTO(reservation))
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	reservation, err := h.service.GetReservation(ctx, kind, chi.URLParam(r, "id"))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, newReservationDTO(reservation))
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	var req updateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r, "Update").WarnContext(ctx, "failed to decode request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	actor, _ := ActorFromContext(ctx)
	reservation, err := h.service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind:          kind,
		ReservationID: chi.URLParam(r, "id"),
		ActorID:       actor,
		Patch:         patch,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, newReservationDTO(reservation))
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	actor, _ := ActorFromContext(ctx)
	err := h.service.CancelReservation(ctx, application.CancelReservationParams{
		Kind:          kind,
		ReservationID: chi.URLParam(r, "id"),
		ActorID:       actor,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	employeeID := strings.TrimSpace(chi.URLParam(r, "employeeID"))
	if employeeID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEmployeeID)
		return
	}

	reservations, err := h.service.History(ctx, kind, employeeID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, reservationListResponse(reservations))
}

func reservationListResponse(reservations []booking.Reservation) map[string]any {
	items := newReservationDTOs(reservations)
	if items == nil {
		items = []reservationDTO{}
	}
	return map[string]any{"reservations": items}
}
