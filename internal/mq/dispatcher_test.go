package mq

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/testfixtures"
)

func newDispatcher(t *testing.T) (*Dispatcher, *testfixtures.BookingHarness) {
	t.Helper()
	harness := testfixtures.NewBookingHarness(t)
	return NewDispatcher(harness.Service, slog.New(slog.NewTextHandler(io.Discard, nil))), harness
}

func command(t *testing.T, typ CommandType, payload any) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	body, err := json.Marshal(CommandEnvelope{Type: typ, Payload: raw})
	require.NoError(t, err)
	return body
}

func payloadOf[T any](t *testing.T, resp Response) T {
	t.Helper()
	require.True(t, resp.OK, "unexpected error response: %+v", resp)
	var out T
	require.NoError(t, json.Unmarshal(resp.Payload, &out))
	return out
}

func day(offset int) string {
	return booking.FormatDate(testfixtures.Day(offset))
}

func TestDispatcherReservationLifecycle(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher(t)
	ctx := context.Background()

	resp := d.Handle(ctx, command(t, CommandCreateReservation, CreateReservationPayload{
		Kind:       "equipment",
		EmployeeID: testfixtures.EmployeeNormal,
		ResourceID: "EQ1",
		Date:       day(1),
		Start:      "09:00",
		End:        "11:00",
	}))
	assert.Equal(t, "CreateReservationResponse", resp.Type)
	created := payloadOf[Reservation](t, resp)
	assert.Equal(t, "EQ1", created.ResourceID)
	assert.Equal(t, "11:00", created.End)

	resp = d.Handle(ctx, command(t, CommandIsAvailable, IsAvailablePayload{
		Kind: "equipment", ResourceID: "EQ1", Date: day(1), Start: "10:00", End: "12:00",
	}))
	assert.False(t, payloadOf[IsAvailableResponsePayload](t, resp).Available)

	start, end := "13:00", "14:00"
	resp = d.Handle(ctx, command(t, CommandUpdateReservation, UpdateReservationPayload{
		Kind:          "equipment",
		ReservationID: created.ID,
		ActorID:       testfixtures.EmployeeNormal,
		Start:         &start,
		End:           &end,
	}))
	updated := payloadOf[Reservation](t, resp)
	assert.Equal(t, "13:00", updated.Start)

	resp = d.Handle(ctx, command(t, CommandListAvailable, ListAvailablePayload{
		Kind: "equipment", Date: day(1), Start: "10:00", End: "12:00",
	}))
	assert.Equal(t, []string{"EQ1"}, payloadOf[ListAvailableResponsePayload](t, resp).Available)

	resp = d.Handle(ctx, command(t, CommandCancelReservation, CancelReservationPayload{
		Kind: "equipment", ReservationID: created.ID, ActorID: testfixtures.EmployeeNormal,
	}))
	assert.Equal(t, "cancelled", payloadOf[CancelReservationResponsePayload](t, resp).Status)
}

func TestDispatcherReportsConflicts(t *testing.T) {
	t.Parallel()

	d, harness := newDispatcher(t)
	harness.Put(t, testfixtures.NewReservationFixture(testfixtures.WithReservationID("winner")))

	resp := d.Handle(context.Background(), command(t, CommandCreateReservation, CreateReservationPayload{
		Kind:       "room",
		EmployeeID: testfixtures.EmployeeNormal2,
		ResourceID: "R1",
		Date:       day(1),
		TimeslotID: testfixtures.SlotMorning,
	}))
	require.False(t, resp.OK)
	assert.Equal(t, "resource_conflict", resp.ErrorKind)
	assert.False(t, resp.Retryable)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "winner", resp.Conflicts[0].ID)
}

func TestDispatcherErrors(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher(t)
	ctx := context.Background()

	cases := []struct {
		name string
		body []byte
		kind string
	}{
		{name: "malformed envelope", body: []byte("{"), kind: "unexpected"},
		{name: "unknown command", body: command(t, "Confirm", map[string]string{}), kind: "unexpected"},
		{name: "unknown kind", body: command(t, CommandListAvailable, ListAvailablePayload{Kind: "parking", Date: day(1)}), kind: "validation"},
		{name: "bad date", body: command(t, CommandListAvailable, ListAvailablePayload{Kind: "room", Date: "tomorrow"}), kind: "validation"},
		{name: "missing interval", body: command(t, CommandIsAvailable, IsAvailablePayload{Kind: "room", ResourceID: "R1", Date: day(1)}), kind: "validation"},
		{
			name: "policy",
			body: command(t, CommandCreateReservation, CreateReservationPayload{
				Kind: "desk", EmployeeID: "E", ResourceID: "D1", Date: day(6), Start: "09:00", End: "10:00",
			}),
			kind: "policy_violation",
		},
		{
			name: "missing reservation",
			body: command(t, CommandCancelReservation, CancelReservationPayload{Kind: "room", ReservationID: "nope"}),
			kind: "not_found",
		},
	}

	for _, tc := range cases {
		resp := d.Handle(ctx, tc.body)
		assert.False(t, resp.OK, tc.name)
		assert.Equal(t, "Error", resp.Type, tc.name)
		assert.Equal(t, tc.kind, resp.ErrorKind, tc.name)
		assert.NotEmpty(t, resp.Error, tc.name)
	}
}
