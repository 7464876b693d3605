// Package mq accepts booking commands from a RabbitMQ queue and answers on
// the delivery's reply-to queue.
package mq

import "encoding/json"

// CommandType names a command carried by a CommandEnvelope.
type CommandType string

const (
	CommandListAvailable     CommandType = "ListAvailable"
	CommandIsAvailable       CommandType = "IsAvailable"
	CommandCreateReservation CommandType = "CreateReservation"
	CommandUpdateReservation CommandType = "UpdateReservation"
	CommandCancelReservation CommandType = "CancelReservation"
)

// CommandEnvelope wraps every message published to the command queue.
type CommandEnvelope struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ListAvailablePayload struct {
	Kind       string `json:"kind"`
	Date       string `json:"date"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	TimeslotID string `json:"timeslot_id,omitempty"`
}

type IsAvailablePayload struct {
	Kind       string `json:"kind"`
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

type CreateReservationPayload struct {
	Kind       string `json:"kind"`
	EmployeeID string `json:"employee_id"`
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	TimeslotID string `json:"timeslot_id,omitempty"`
}

// UpdateReservationPayload changes only the fields that are present.
type UpdateReservationPayload struct {
	Kind          string  `json:"kind"`
	ReservationID string  `json:"reservation_id"`
	ActorID       string  `json:"actor_id,omitempty"`
	EmployeeID    *string `json:"employee_id,omitempty"`
	ResourceID    *string `json:"resource_id,omitempty"`
	Date          *string `json:"date,omitempty"`
	Start         *string `json:"start,omitempty"`
	End           *string `json:"end,omitempty"`
	TimeslotID    *string `json:"timeslot_id,omitempty"`
}

type CancelReservationPayload struct {
	Kind          string `json:"kind"`
	ReservationID string `json:"reservation_id"`
	ActorID       string `json:"actor_id,omitempty"`
}

type ListAvailableResponsePayload struct {
	Kind      string   `json:"kind"`
	Date      string   `json:"date"`
	Available []string `json:"available"`
}

type IsAvailableResponsePayload struct {
	ResourceID string `json:"resource_id"`
	Available  bool   `json:"available"`
}

type Reservation struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	EmployeeID string `json:"employee_id"`
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	TimeslotID string `json:"timeslot_id,omitempty"`
}

type CancelReservationResponsePayload struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
}

// Response is published to the reply-to queue. ErrorKind carries the stable
// error classification and Conflicts the reservations that won, if any.
type Response struct {
	OK        bool            `json:"ok"`
	Type      string          `json:"type"`
	Error     string          `json:"error,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
	Retryable bool            `json:"retryable,omitempty"`
	Conflicts []Reservation   `json:"conflicts,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
