// Package http exposes the booking service over JSON.
//
// The router serves the following endpoints, where {kind} is desk, room or
// equipment:
//   - GET /healthz: liveness probe.
//   - GET /api/{kind}/reservations?employee_id=&resource_id=&from=&to=: lists
//     reservations as `reservationDTO` values.
//   - POST /api/{kind}/reservations: creates a reservation. Body:
//     {"employee_id","resource_id","date","start","end"} or
//     {"employee_id","resource_id","date","timeslot_id"}.
//   - GET, PATCH, DELETE /api/{kind}/reservations/{id}: reads, updates or
//     cancels one reservation. PATCH accepts any subset of the create fields.
//   - GET /api/{kind}/availability?date=&start=&end=&timeslot_id=&resource_id=:
//     lists the free resource ids.
//   - GET /api/{kind}/resources/{resourceID}/availability?date=&start=&end=:
//     reports whether one resource is free; with detail=slots it also returns
//     the free gaps inside the window (the whole day when no window is given).
//   - GET /api/{kind}/employees/{employeeID}/history: the employee's
//     reservations of the last two weeks.
//
// The acting employee is read from the X-Employee-ID header; authenticating
// that header is left to the deployment in front of this service.
package http
