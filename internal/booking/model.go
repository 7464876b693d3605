package booking

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies a family of bookable resources.
type Kind string

const (
	KindDesk      Kind = "desk"
	KindRoom      Kind = "room"
	KindEquipment Kind = "equipment"
)

// Kinds returns every supported resource kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindDesk, KindRoom, KindEquipment}
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	switch k {
	case KindDesk, KindRoom, KindEquipment:
		return true
	}
	return false
}

// ParseKind converts user input into a Kind.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown resource kind %q", value)
	}
	return kind, nil
}

// Role drives the advance booking window of an employee.
type Role string

const (
	RoleNormal     Role = "NORMAL"
	RolePrivileged Role = "PRIVILEGED"
	RoleOperator   Role = "OPERATOR"
	RoleAdmin      Role = "ADMIN"
)

const (
	normalAdvanceWeeks   = 1
	extendedAdvanceWeeks = 12
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleNormal, RolePrivileged, RoleOperator, RoleAdmin:
		return true
	}
	return false
}

// AdvanceWeeks is how far ahead, in weeks, the role may book a desk.
func (r Role) AdvanceWeeks() int {
	if r == RoleNormal {
		return normalAdvanceWeeks
	}
	return extendedAdvanceWeeks
}

// CanReassign reports whether the role may move a reservation to another employee.
func (r Role) CanReassign() bool {
	return r == RoleOperator || r == RoleAdmin
}

// ParseRole converts user input into a Role.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// ResourceRef names a single bookable resource.
type ResourceRef struct {
	Kind Kind
	ID   string
}

func (r ResourceRef) String() string {
	return string(r.Kind) + "/" + r.ID
}

// Resource is a catalogue entry for something that can be reserved.
type Resource struct {
	Kind Kind
	ID   string
	Name string
}

// Ref returns the identity of the resource.
func (r Resource) Ref() ResourceRef {
	return ResourceRef{Kind: r.Kind, ID: r.ID}
}

// Employee is a directory entry.
type Employee struct {
	ID   string
	Name string
	Role Role
}

// Holiday describes a calendar day that may block bookings.
type Holiday struct {
	Date           time.Time
	Description    string
	BookingAllowed bool
}

// Timeslot is a named, predefined interval.
type Timeslot struct {
	ID       string
	Name     string
	Interval Interval
}

// Reservation binds an employee to a resource for an interval on a date.
// Interval is always resolved, even when the reservation was made from a
// timeslot; TimeslotID only records where it came from.
type Reservation struct {
	ID         string
	Kind       Kind
	EmployeeID string
	ResourceID string
	Date       time.Time
	Interval   Interval
	TimeslotID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Resource returns the identity of the reserved resource.
func (r Reservation) Resource() ResourceRef {
	return ResourceRef{Kind: r.Kind, ID: r.ResourceID}
}
