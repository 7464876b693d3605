package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
)

type availabilityResponse struct {
	Kind      string   `json:"kind"`
	Date      string   `json:"date"`
	Available []string `json:"available"`
}

type resourceAvailabilityResponse struct {
	Kind       string        `json:"kind"`
	ResourceID string        `json:"resource_id"`
	Date       string        `json:"date"`
	Start      string        `json:"start"`
	End        string        `json:"end"`
	Available  bool          `json:"available"`
	FreeSlots  []intervalDTO `json:"free_slots,omitempty"`
}

// Availability lists the resources of a kind that are free for a date and
// either an explicit window or a timeslot.
func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	vErr := &application.ValidationError{}
	date := parseDateField(vErr, query.Get("date"))
	interval := parseIntervalFields(vErr, query.Get("start"), query.Get("end"))
	if vErr.HasErrors() {
		h.responder.handleServiceError(ctx, w, vErr)
		return
	}

	ids, err := h.service.FindAvailable(ctx, application.AvailabilityQuery{
		Kind:       kind,
		Date:       date,
		Interval:   interval,
		TimeslotID: strings.TrimSpace(query.Get("timeslot_id")),
		ResourceID: strings.TrimSpace(query.Get("resource_id")),
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, availabilityResponse{
		Kind:      string(kind),
		Date:      booking.FormatDate(date),
		Available: ids,
	})
}

// ResourceAvailability reports whether one resource is free. Without start
// and end the whole day is checked; detail=slots adds the free gaps.
func (h *ReservationHandler) ResourceAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	resourceID := strings.TrimSpace(chi.URLParam(r, "resourceID"))
	if resourceID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingResourceID)
		return
	}

	query := r.URL.Query()
	vErr := &application.ValidationError{}
	date := parseDateField(vErr, query.Get("date"))
	if date.IsZero() && !vErr.HasErrors() {
		vErr.FieldErrors = mergeField(vErr.FieldErrors, "date", "date is required")
	}
	window := booking.FullDay
	if interval := parseIntervalFields(vErr, query.Get("start"), query.Get("end")); interval != nil {
		window = *interval
	}
	if vErr.HasErrors() {
		h.responder.handleServiceError(ctx, w, vErr)
		return
	}

	available, err := h.service.IsAvailable(ctx, kind, resourceID, date, window)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	resp := resourceAvailabilityResponse{
		Kind:       string(kind),
		ResourceID: resourceID,
		Date:       booking.FormatDate(date),
		Start:      window.Start.String(),
		End:        window.End.String(),
		Available:  available,
	}
	if query.Get("detail") == "slots" {
		slots, err := h.service.FreeSlots(ctx, kind, resourceID, date, window)
		if err != nil {
			h.responder.handleServiceError(ctx, w, err)
			return
		}
		resp.FreeSlots = newIntervalDTOs(slots)
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, resp)
}
