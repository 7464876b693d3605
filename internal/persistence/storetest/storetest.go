// Package storetest is a behavioural suite shared by every persistence.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// Opener returns an empty store for a single subtest.
type Opener func(t *testing.T) persistence.Store

var (
	day       = booking.NewDate(2026, time.October, 20)
	createdAt = time.Date(2026, time.October, 18, 8, 0, 0, 0, time.UTC)
)

func hours(start, end int) booking.Interval {
	return booking.Interval{Start: booking.NewTimeOfDay(start, 0), End: booking.NewTimeOfDay(end, 0)}
}

func reservation(id string, kind booking.Kind, employeeID, resourceID string, date time.Time, interval booking.Interval) booking.Reservation {
	return booking.Reservation{
		ID:         id,
		Kind:       kind,
		EmployeeID: employeeID,
		ResourceID: resourceID,
		Date:       date,
		Interval:   interval,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func ids(reservations []booking.Reservation) []string {
	out := make([]string, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, r.ID)
	}
	return out
}

// Run executes the suite against stores produced by open.
func Run(t *testing.T, open Opener) {
	t.Run("reservation round trip", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)

		want := reservation("res-1", booking.KindRoom, "E", "R1", day, hours(9, 12))
		want.TimeslotID = "morning"
		require.NoError(t, store.SaveReservation(ctx, want))

		got, err := store.FindReservationByID(ctx, "res-1")
		require.NoError(t, err)
		assert.Equal(t, want.Kind, got.Kind)
		assert.Equal(t, want.EmployeeID, got.EmployeeID)
		assert.Equal(t, want.ResourceID, got.ResourceID)
		assert.True(t, want.Date.Equal(got.Date), "date %v", got.Date)
		assert.Equal(t, want.Interval, got.Interval)
		assert.Equal(t, "morning", got.TimeslotID)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

		exists, err := store.ReservationExists(ctx, "res-1")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = store.FindReservationByID(ctx, "missing")
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})

	t.Run("overlapping reservation is rejected", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)

		require.NoError(t, store.SaveReservation(ctx, reservation("a", booking.KindRoom, "E", "R1", day, hours(9, 12))))

		err := store.SaveReservation(ctx, reservation("b", booking.KindRoom, "F", "R1", day, hours(11, 13)))
		assert.ErrorIs(t, err, persistence.ErrConflict)

		err = store.SaveReservation(ctx, reservation("c", booking.KindRoom, "F", "R1", day, hours(8, 18)))
		assert.ErrorIs(t, err, persistence.ErrConflict)

		require.NoError(t, store.SaveReservation(ctx, reservation("d", booking.KindRoom, "F", "R1", day, hours(12, 13))), "touching intervals")
		require.NoError(t, store.SaveReservation(ctx, reservation("e", booking.KindRoom, "F", "R2", day, hours(9, 12))), "different resource")
		require.NoError(t, store.SaveReservation(ctx, reservation("f", booking.KindEquipment, "F", "R1", day, hours(9, 12))), "different kind")
		require.NoError(t, store.SaveReservation(ctx, reservation("g", booking.KindRoom, "F", "R1", day.AddDate(0, 0, 1), hours(9, 12))), "different date")
	})

	t.Run("updating a reservation does not conflict with itself", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)

		original := reservation("a", booking.KindRoom, "E", "R1", day, hours(9, 12))
		require.NoError(t, store.SaveReservation(ctx, original))

		moved := original
		moved.Interval = hours(10, 13)
		moved.UpdatedAt = createdAt.Add(time.Hour)
		require.NoError(t, store.SaveReservation(ctx, moved))

		got, err := store.FindReservationByID(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, hours(10, 13), got.Interval)
		assert.True(t, moved.UpdatedAt.Equal(got.UpdatedAt))
	})

	t.Run("second desk for the same employee and date is a duplicate", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)

		require.NoError(t, store.SaveReservation(ctx, reservation("a", booking.KindDesk, "E", "D1", day, hours(9, 12))))

		err := store.SaveReservation(ctx, reservation("b", booking.KindDesk, "E", "D2", day, hours(13, 15)))
		assert.ErrorIs(t, err, persistence.ErrDuplicate)

		require.NoError(t, store.SaveReservation(ctx, reservation("c", booking.KindRoom, "E", "R1", day, hours(13, 15))), "rooms are not limited")
		require.NoError(t, store.SaveReservation(ctx, reservation("d", booking.KindDesk, "E", "D2", day.AddDate(0, 0, 1), hours(9, 12))), "next day")
	})

	t.Run("queries by resource, employee and date", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)

		for _, r := range []booking.Reservation{
			reservation("r2", booking.KindRoom, "E", "R1", day, hours(13, 14)),
			reservation("r1", booking.KindRoom, "F", "R1", day, hours(9, 10)),
			reservation("r3", booking.KindRoom, "E", "R2", day, hours(9, 10)),
			reservation("r4", booking.KindRoom, "E", "R1", day.AddDate(0, 0, 1), hours(9, 10)),
			reservation("d1", booking.KindDesk, "E", "R1", day, hours(9, 10)),
		} {
			require.NoError(t, store.SaveReservation(ctx, r))
		}

		byResource, err := store.FindReservationsByResourceAndDate(ctx, booking.KindRoom, "R1", day)
		require.NoError(t, err)
		assert.Equal(t, []string{"r1", "r2"}, ids(byResource))

		byEmployee, err := store.FindReservationsByEmployeeAndDate(ctx, booking.KindRoom, "E", day)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"r2", "r3"}, ids(byEmployee))

		byDate, err := store.FindReservationsByDate(ctx, booking.KindRoom, day)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"r1", "r2", "r3"}, ids(byDate))

		from := day.AddDate(0, 0, 1)
		listed, err := store.ListReservations(ctx, persistence.ReservationFilter{Kind: booking.KindRoom, EmployeeID: "E", From: &from})
		require.NoError(t, err)
		assert.Equal(t, []string{"r4"}, ids(listed))

		to := day
		listed, err = store.ListReservations(ctx, persistence.ReservationFilter{EmployeeID: "E", To: &to})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"r2", "r3", "d1"}, ids(listed))

		empty, err := store.FindReservationsByDate(ctx, booking.KindEquipment, day)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("delete removes the reservation", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)

		require.NoError(t, store.SaveReservation(ctx, reservation("a", booking.KindRoom, "E", "R1", day, hours(9, 12))))
		require.NoError(t, store.DeleteReservation(ctx, "a"))

		exists, err := store.ReservationExists(ctx, "a")
		require.NoError(t, err)
		assert.False(t, exists)
		assert.ErrorIs(t, store.DeleteReservation(ctx, "a"), persistence.ErrNotFound)

		require.NoError(t, store.SaveReservation(ctx, reservation("b", booking.KindRoom, "F", "R1", day, hours(9, 12))), "slot is free again")
	})

	t.Run("reference data", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)

		require.NoError(t, persistence.Seed(ctx, store, persistence.SeedData{
			Employees: []booking.Employee{{ID: "E", Name: "Erin", Role: booking.RoleNormal}, {ID: "A", Name: "Ada", Role: booking.RoleAdmin}},
			Resources: []booking.Resource{{Kind: booking.KindDesk, ID: "D2"}, {Kind: booking.KindDesk, ID: "D1", Name: "Window"}, {Kind: booking.KindRoom, ID: "R1"}},
			Holidays:  []booking.Holiday{{Date: day, Description: "Founders day", BookingAllowed: false}},
			Timeslots: []booking.Timeslot{{ID: "afternoon", Name: "Afternoon", Interval: hours(13, 17)}, {ID: "morning", Name: "Morning", Interval: hours(9, 12)}},
		}))

		role, err := store.GetRole(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, booking.RoleAdmin, role)
		_, err = store.GetRole(ctx, "nobody")
		assert.ErrorIs(t, err, persistence.ErrNotFound)

		desks, err := store.ListResources(ctx, booking.KindDesk)
		require.NoError(t, err)
		require.Len(t, desks, 2)
		assert.Equal(t, "D1", desks[0].ID)
		assert.Equal(t, "Window", desks[0].Name)
		_, err = store.GetResource(ctx, booking.KindRoom, "D1")
		assert.ErrorIs(t, err, persistence.ErrNotFound)

		holiday, err := store.FindHolidayByDate(ctx, day)
		require.NoError(t, err)
		assert.False(t, holiday.BookingAllowed)
		assert.Equal(t, "Founders day", holiday.Description)
		_, err = store.FindHolidayByDate(ctx, day.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, persistence.ErrNotFound)

		holiday.BookingAllowed = true
		require.NoError(t, store.UpsertHoliday(ctx, holiday))
		holiday, err = store.FindHolidayByDate(ctx, day)
		require.NoError(t, err)
		assert.True(t, holiday.BookingAllowed)
		require.NoError(t, store.DeleteHoliday(ctx, day))
		holidays, err := store.ListHolidays(ctx)
		require.NoError(t, err)
		assert.Empty(t, holidays)

		slot, err := store.FindTimeslotByID(ctx, "morning")
		require.NoError(t, err)
		assert.Equal(t, hours(9, 12), slot.Interval)
		slots, err := store.ListTimeslots(ctx)
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.Equal(t, "morning", slots[0].ID)
		_, err = store.FindTimeslotByID(ctx, "evening")
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})
}
