package http

import (
	"strings"
	"time"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
)

type reservationDTO struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	EmployeeID string    `json:"employee_id"`
	ResourceID string    `json:"resource_id"`
	Date       string    `json:"date"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	TimeslotID string    `json:"timeslot_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newReservationDTO(r booking.Reservation) reservationDTO {
	return reservationDTO{
		ID:         r.ID,
		Kind:       string(r.Kind),
		EmployeeID: r.EmployeeID,
		ResourceID: r.ResourceID,
		Date:       booking.FormatDate(r.Date),
		Start:      r.Interval.Start.String(),
		End:        r.Interval.End.String(),
		TimeslotID: r.TimeslotID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func newReservationDTOs(reservations []booking.Reservation) []reservationDTO {
	if len(reservations) == 0 {
		return nil
	}
	out := make([]reservationDTO, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, newReservationDTO(r))
	}
	return out
}

type intervalDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func newIntervalDTOs(intervals []booking.Interval) []intervalDTO {
	out := make([]intervalDTO, 0, len(intervals))
	for _, i := range intervals {
		out = append(out, intervalDTO{Start: i.Start.String(), End: i.End.String()})
	}
	return out
}

type createReservationRequest struct {
	EmployeeID string `json:"employee_id"`
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	TimeslotID string `json:"timeslot_id"`
}

func (req createReservationRequest) toParams(kind booking.Kind) (application.CreateReservationParams, error) {
	vErr := &application.ValidationError{}
	params := application.CreateReservationParams{
		Kind:       kind,
		EmployeeID: strings.TrimSpace(req.EmployeeID),
		ResourceID: strings.TrimSpace(req.ResourceID),
		TimeslotID: strings.TrimSpace(req.TimeslotID),
	}
	params.Date = parseDateField(vErr, req.Date)
	params.Interval = parseIntervalFields(vErr, req.Start, req.End)
	if vErr.HasErrors() {
		return params, vErr
	}
	return params, nil
}

type updateReservationRequest struct {
	EmployeeID *string `json:"employee_id"`
	ResourceID *string `json:"resource_id"`
	Date       *string `json:"date"`
	Start      *string `json:"start"`
	End        *string `json:"end"`
	TimeslotID *string `json:"timeslot_id"`
}

func (req updateReservationRequest) toPatch() (application.ReservationPatch, error) {
	vErr := &application.ValidationError{}
	patch := application.ReservationPatch{
		EmployeeID: trimmed(req.EmployeeID),
		ResourceID: trimmed(req.ResourceID),
		TimeslotID: trimmed(req.TimeslotID),
	}
	if req.Date != nil {
		date := parseDateField(vErr, *req.Date)
		patch.Date = &date
	}
	if req.Start != nil || req.End != nil {
		start, end := deref(req.Start), deref(req.End)
		if start == "" || end == "" {
			vErr.FieldErrors = mergeField(vErr.FieldErrors, "interval", "start must be before end")
		} else {
			patch.Interval = parseIntervalFields(vErr, start, end)
		}
	}
	if vErr.HasErrors() {
		return patch, vErr
	}
	return patch, nil
}

func parseDateField(vErr *application.ValidationError, value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	date, err := booking.ParseDate(value)
	if err != nil {
		vErr.FieldErrors = mergeField(vErr.FieldErrors, "date", "date must be YYYY-MM-DD")
		return time.Time{}
	}
	return date
}

// parseIntervalFields returns nil when both fields are empty so the service
// can fall back to a timeslot.
func parseIntervalFields(vErr *application.ValidationError, start, end string) *booking.Interval {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil
	}
	from, err := booking.ParseTimeOfDay(start)
	if err != nil {
		vErr.FieldErrors = mergeField(vErr.FieldErrors, "start", "time must be HH:MM")
		return nil
	}
	to, err := booking.ParseTimeOfDay(end)
	if err != nil {
		vErr.FieldErrors = mergeField(vErr.FieldErrors, "end", "time must be HH:MM")
		return nil
	}
	interval := booking.Interval{Start: from, End: to}
	return &interval
}

func mergeField(fields map[string]string, field, message string) map[string]string {
	if fields == nil {
		fields = make(map[string]string)
	}
	fields[field] = message
	return fields
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
