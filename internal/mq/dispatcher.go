package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
)

type bookingService interface {
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (booking.Reservation, error)
	UpdateReservation(ctx context.Context, params application.UpdateReservationParams) (booking.Reservation, error)
	CancelReservation(ctx context.Context, params application.CancelReservationParams) error
	FindAvailable(ctx context.Context, query application.AvailabilityQuery) ([]string, error)
	IsAvailable(ctx context.Context, kind booking.Kind, resourceID string, date time.Time, interval booking.Interval) (bool, error)
}

// Dispatcher decodes command envelopes and runs them against the booking
// service. It knows nothing about the broker.
type Dispatcher struct {
	service bookingService
	logger  *slog.Logger
}

func NewDispatcher(service bookingService, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{service: service, logger: logger}
}

// Handle runs one encoded command and always returns a response to publish.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) Response {
	var env CommandEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errorResponse(fmt.Errorf("invalid command format: %w", err))
	}

	logger := d.logger.With("command", env.Type)
	var (
		payload any
		err     error
	)
	switch env.Type {
	case CommandListAvailable:
		payload, err = d.listAvailable(ctx, env.Payload)
	case CommandIsAvailable:
		payload, err = d.isAvailable(ctx, env.Payload)
	case CommandCreateReservation:
		payload, err = d.createReservation(ctx, env.Payload)
	case CommandUpdateReservation:
		payload, err = d.updateReservation(ctx, env.Payload)
	case CommandCancelReservation:
		payload, err = d.cancelReservation(ctx, env.Payload)
	default:
		err = fmt.Errorf("unknown command type: %s", env.Type)
	}
	if err != nil {
		logger.WarnContext(ctx, "command failed", "error", err, "error_kind", application.ErrorKind(err))
		return errorResponse(err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return errorResponse(fmt.Errorf("failed to encode response: %w", err))
	}
	logger.DebugContext(ctx, "command handled")
	return Response{OK: true, Type: string(env.Type) + "Response", Payload: raw}
}

func (d *Dispatcher) listAvailable(ctx context.Context, raw json.RawMessage) (any, error) {
	var req ListAvailablePayload
	if err := decodePayload(raw, &req); err != nil {
		return nil, err
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	interval, err := parseOptionalInterval(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	ids, err := d.service.FindAvailable(ctx, application.AvailabilityQuery{
		Kind:       kind,
		Date:       date,
		Interval:   interval,
		TimeslotID: strings.TrimSpace(req.TimeslotID),
	})
	if err != nil {
		return nil, err
	}
	return ListAvailableResponsePayload{Kind: string(kind), Date: booking.FormatDate(date), Available: ids}, nil
}

func (d *Dispatcher) isAvailable(ctx context.Context, raw json.RawMessage) (any, error) {
	var req IsAvailablePayload
	if err := decodePayload(raw, &req); err != nil {
		return nil, err
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	interval, err := parseOptionalInterval(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if interval == nil {
		return nil, invalidField("interval", "start and end are required")
	}

	available, err := d.service.IsAvailable(ctx, kind, req.ResourceID, date, *interval)
	if err != nil {
		return nil, err
	}
	return IsAvailableResponsePayload{ResourceID: req.ResourceID, Available: available}, nil
}

func (d *Dispatcher) createReservation(ctx context.Context, raw json.RawMessage) (any, error) {
	var req CreateReservationPayload
	if err := decodePayload(raw, &req); err != nil {
		return nil, err
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	interval, err := parseOptionalInterval(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	reservation, err := d.service.CreateReservation(ctx, application.CreateReservationParams{
		Kind:       kind,
		EmployeeID: req.EmployeeID,
		ResourceID: req.ResourceID,
		Date:       date,
		Interval:   interval,
		TimeslotID: strings.TrimSpace(req.TimeslotID),
	})
	if err != nil {
		return nil, err
	}
	return toReservation(reservation), nil
}

func (d *Dispatcher) updateReservation(ctx context.Context, raw json.RawMessage) (any, error) {
	var req UpdateReservationPayload
	if err := decodePayload(raw, &req); err != nil {
		return nil, err
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	patch := application.ReservationPatch{
		EmployeeID: req.EmployeeID,
		ResourceID: req.ResourceID,
		TimeslotID: req.TimeslotID,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		patch.Date = &date
	}
	if req.Start != nil || req.End != nil {
		if req.Start == nil || req.End == nil {
			return nil, invalidField("interval", "start and end must be changed together")
		}
		interval, err := parseOptionalInterval(*req.Start, *req.End)
		if err != nil {
			return nil, err
		}
		patch.Interval = interval
	}

	reservation, err := d.service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind:          kind,
		ReservationID: req.ReservationID,
		ActorID:       req.ActorID,
		Patch:         patch,
	})
	if err != nil {
		return nil, err
	}
	return toReservation(reservation), nil
}

func (d *Dispatcher) cancelReservation(ctx context.Context, raw json.RawMessage) (any, error) {
	var req CancelReservationPayload
	if err := decodePayload(raw, &req); err != nil {
		return nil, err
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	err = d.service.CancelReservation(ctx, application.CancelReservationParams{
		Kind:          kind,
		ReservationID: req.ReservationID,
		ActorID:       req.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return CancelReservationResponsePayload{ReservationID: req.ReservationID, Status: "cancelled"}, nil
}

func errorResponse(err error) Response {
	resp := Response{
		OK:        false,
		Type:      "Error",
		Error:     err.Error(),
		ErrorKind: application.ErrorKind(err),
		Retryable: booking.IsRetryable(err),
	}
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		for _, r := range conflict.Conflicts {
			resp.Conflicts = append(resp.Conflicts, toReservation(r))
		}
	}
	return resp
}

func toReservation(r booking.Reservation) Reservation {
	return Reservation{
		ID:         r.ID,
		Kind:       string(r.Kind),
		EmployeeID: r.EmployeeID,
		ResourceID: r.ResourceID,
		Date:       booking.FormatDate(r.Date),
		Start:      r.Interval.Start.String(),
		End:        r.Interval.End.String(),
		TimeslotID: r.TimeslotID,
	}
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return invalidField("payload", "payload is required")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return invalidField("payload", "invalid payload: "+err.Error())
	}
	return nil
}

func parseKind(value string) (booking.Kind, error) {
	kind, err := booking.ParseKind(value)
	if err != nil {
		return "", invalidField("kind", err.Error())
	}
	return kind, nil
}

func parseDate(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	date, err := booking.ParseDate(value)
	if err != nil {
		return time.Time{}, invalidField("date", "date must be YYYY-MM-DD")
	}
	return date, nil
}

func parseOptionalInterval(start, end string) (*booking.Interval, error) {
	if strings.TrimSpace(start) == "" && strings.TrimSpace(end) == "" {
		return nil, nil
	}
	interval, err := booking.ParseInterval(start, end)
	if err != nil {
		return nil, invalidField("interval", err.Error())
	}
	return &interval, nil
}

func invalidField(field, message string) error {
	return &application.ValidationError{FieldErrors: map[string]string{field: message}}
}
