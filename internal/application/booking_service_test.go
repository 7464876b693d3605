package application_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/persistence/memory"
	"github.com/example/workspace-booking/internal/testfixtures"
)

func create(t *testing.T, svc *application.BookingService, opts ...testfixtures.ReservationOption) (booking.Reservation, error) {
	t.Helper()
	return svc.CreateReservation(context.Background(), testfixtures.NewReservationFixture(opts...).CreateParams())
}

func requireViolation(t *testing.T, err error, reason booking.PolicyReason) *booking.PolicyViolation {
	t.Helper()
	var pv *booking.PolicyViolation
	require.ErrorAs(t, err, &pv)
	require.Equal(t, reason, pv.Reason)
	return pv
}

func requireConflict(t *testing.T, err error, ids ...string) {
	t.Helper()
	var ce *booking.ConflictError
	require.ErrorAs(t, err, &ce)
	got := make([]string, 0, len(ce.Conflicts))
	for _, c := range ce.Conflicts {
		got = append(got, c.ID)
	}
	assert.ElementsMatch(t, ids, got)
}

func deskOn(day time.Time, desk, employee, start, end string) []testfixtures.ReservationOption {
	return []testfixtures.ReservationOption{
		testfixtures.WithKind(booking.KindDesk),
		testfixtures.WithResource(desk),
		testfixtures.WithEmployee(employee),
		testfixtures.WithDate(day),
		testfixtures.WithInterval(start, end),
	}
}

func TestDeskBookingScenario(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	tuesday := testfixtures.Day(2)
	require.Equal(t, time.Tuesday, tuesday.Weekday())

	first, err := create(t, h.Service, deskOn(tuesday, "D1", testfixtures.EmployeeNormal, "09:00", "12:00")...)
	require.NoError(t, err)
	assert.Equal(t, "res-1", first.ID)
	assert.Equal(t, booking.KindDesk, first.Kind)
	assert.True(t, first.CreatedAt.Equal(testfixtures.ReferenceTime()))
	assert.True(t, first.UpdatedAt.Equal(first.CreatedAt))

	_, err = create(t, h.Service, deskOn(tuesday, "D1", testfixtures.EmployeeNormal2, "11:00", "13:00")...)
	assert.ErrorIs(t, err, booking.ErrResourceConflict)
	requireConflict(t, err, first.ID)

	_, err = create(t, h.Service, deskOn(tuesday, "D2", testfixtures.EmployeeNormal, "09:00", "12:00")...)
	assert.ErrorIs(t, err, booking.ErrEmployeeAlreadyBooked)
	requireViolation(t, err, booking.ReasonEmployeeAlreadyBooked)

	stored, err := h.Store.ListReservations(context.Background(), persistence.ReservationFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 1, "failed requests must not write")
}

func TestRoleAdvanceWindow(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	eightDays := testfixtures.Day(8)

	_, err := create(t, h.Service, deskOn(eightDays, "D1", testfixtures.EmployeeNormal, "09:00", "17:00")...)
	pv := requireViolation(t, err, booking.ReasonAdvanceWindowExceeded)
	assert.Equal(t, 1, pv.MaxWeeks)
	assert.Contains(t, err.Error(), "1 week(s)")

	_, err = create(t, h.Service, deskOn(eightDays, "D1", testfixtures.EmployeeAdmin, "09:00", "17:00")...)
	require.NoError(t, err)

	_, err = create(t, h.Service, deskOn(testfixtures.Day(85), "D2", testfixtures.EmployeePrivileged, "09:00", "17:00")...)
	pv = requireViolation(t, err, booking.ReasonAdvanceWindowExceeded)
	assert.Equal(t, 12, pv.MaxWeeks)
}

func TestAdvanceWindowBoundaryIsBookable(t *testing.T) {
	monday := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	h := testfixtures.NewBookingHarness(t, testfixtures.WithClock(testfixtures.NewClock(monday)))
	nextMonday := booking.DateOf(monday).AddDate(0, 0, 7)

	_, err := create(t, h.Service, deskOn(nextMonday, "D1", testfixtures.EmployeeNormal, "09:00", "17:00")...)
	require.NoError(t, err)

	_, err = create(t, h.Service, deskOn(nextMonday.AddDate(0, 0, 1), "D1", testfixtures.EmployeeNormal, "09:00", "17:00")...)
	requireViolation(t, err, booking.ReasonAdvanceWindowExceeded)
}

func TestWeekdayRuleAppliesToDesksOnly(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	saturday := testfixtures.Day(6)
	require.Equal(t, time.Saturday, saturday.Weekday())

	_, err := create(t, h.Service, deskOn(saturday, "D1", testfixtures.EmployeeNormal, "09:00", "12:00")...)
	requireViolation(t, err, booking.ReasonWeekendNotAllowed)

	_, err = create(t, h.Service, testfixtures.WithDate(saturday))
	require.NoError(t, err)

	_, err = create(t, h.Service, testfixtures.WithKind(booking.KindEquipment), testfixtures.WithResource("EQ1"), testfixtures.WithDate(testfixtures.Day(40)))
	require.NoError(t, err, "equipment has no advance window")
}

func TestPastDateRejectedForEveryKind(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	yesterday := testfixtures.Day(-1)

	_, err := create(t, h.Service, testfixtures.WithDate(yesterday))
	requireViolation(t, err, booking.ReasonPastDate)

	_, err = create(t, h.Service, deskOn(yesterday, "D1", testfixtures.EmployeeAdmin, "09:00", "10:00")...)
	requireViolation(t, err, booking.ReasonPastDate)

	_, err = create(t, h.Service, testfixtures.WithDate(testfixtures.Today()))
	require.NoError(t, err, "today is bookable")
}

func TestHolidayRule(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)

	_, err := create(t, h.Service, deskOn(testfixtures.BlackoutDay, "D1", testfixtures.EmployeeNormal, "09:00", "12:00")...)
	requireViolation(t, err, booking.ReasonHolidayBlackout)

	_, err = create(t, h.Service, testfixtures.WithDate(testfixtures.BlackoutDay))
	requireViolation(t, err, booking.ReasonHolidayBlackout)

	_, err = create(t, h.Service, deskOn(testfixtures.OpenHoliday, "D1", testfixtures.EmployeeNormal, "09:00", "12:00")...)
	require.NoError(t, err, "holiday with booking allowed")

	_, err = create(t, h.Service, deskOn(testfixtures.Day(1), "D1", testfixtures.EmployeeNormal, "09:00", "12:00")...)
	require.NoError(t, err, "no holiday record means bookable")
}

func TestContainmentIsAConflictEitherWay(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	outer := h.Put(t, testfixtures.NewReservationFixture(testfixtures.WithInterval("09:00", "17:00")))

	_, err := create(t, h.Service, testfixtures.WithInterval("10:00", "11:00"), testfixtures.WithEmployee(testfixtures.EmployeeNormal2))
	requireConflict(t, err, outer.ID)

	inner := h.Put(t, testfixtures.NewReservationFixture(testfixtures.WithResource("R2"), testfixtures.WithInterval("10:00", "11:00")))
	_, err = create(t, h.Service, testfixtures.WithResource("R2"), testfixtures.WithInterval("09:00", "17:00"))
	requireConflict(t, err, inner.ID)
}

func TestTouchingIntervalsBothBook(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)

	_, err := create(t, h.Service, testfixtures.WithInterval("08:00", "12:30"))
	require.NoError(t, err)
	_, err = create(t, h.Service, testfixtures.WithInterval("12:30", "17:00"), testfixtures.WithEmployee(testfixtures.EmployeeNormal2))
	require.NoError(t, err)
}

func TestCancelThenCreateIdentical(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	ctx := context.Background()

	first, err := create(t, h.Service)
	require.NoError(t, err)

	require.NoError(t, h.Service.CancelReservation(ctx, application.CancelReservationParams{
		Kind:          booking.KindRoom,
		ReservationID: first.ID,
	}))

	second, err := create(t, h.Service)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	err = h.Service.CancelReservation(ctx, application.CancelReservationParams{Kind: booking.KindRoom, ReservationID: first.ID})
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestConcurrentCreatesAdmitOneWinner(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)

	var (
		wins      atomic.Int32
		conflicts atomic.Int32
		wg        sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.Service.CreateReservation(context.Background(), testfixtures.NewReservationFixture(
				testfixtures.WithInterval("09:00", "12:00"),
			).CreateParams())
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, booking.ErrResourceConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(15), conflicts.Load())
}

func TestConcurrentDesksForOneEmployee(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	desks := []string{"D1", "D2", "D3"}

	var (
		wins atomic.Int32
		wg   sync.WaitGroup
	)
	for _, desk := range desks {
		wg.Add(1)
		go func(desk string) {
			defer wg.Done()
			_, err := create(t, h.Service, deskOn(testfixtures.Day(2), desk, testfixtures.EmployeeNormal, "09:00", "12:00")...)
			if err == nil {
				wins.Add(1)
				return
			}
			assert.ErrorIs(t, err, booking.ErrEmployeeAlreadyBooked)
		}(desk)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestUpdateExcludesItself(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	h.Factory.Clock.Advance(time.Hour)
	ctx := context.Background()

	r, err := create(t, h.Service, testfixtures.WithInterval("09:00", "12:00"))
	require.NoError(t, err)

	moved := testfixtures.Span("10:00", "13:00")
	updated, err := h.Service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind:          booking.KindRoom,
		ReservationID: r.ID,
		Patch:         application.ReservationPatch{Interval: &moved},
	})
	require.NoError(t, err)
	assert.Equal(t, moved, updated.Interval)
	assert.Equal(t, r.ID, updated.ID)
	assert.True(t, updated.CreatedAt.Equal(r.CreatedAt))

	desk, err := create(t, h.Service, deskOn(testfixtures.Day(2), "D1", testfixtures.EmployeeNormal, "09:00", "12:00")...)
	require.NoError(t, err)
	h.Factory.Clock.Advance(time.Minute)
	otherDesk := "D2"
	updated, err = h.Service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind:          booking.KindDesk,
		ReservationID: desk.ID,
		Patch:         application.ReservationPatch{ResourceID: &otherDesk},
	})
	require.NoError(t, err, "moving a desk must not trip the one-desk-per-day rule on itself")
	assert.Equal(t, "D2", updated.ResourceID)
	assert.True(t, updated.UpdatedAt.After(desk.CreatedAt))
}

func TestUpdateChecks(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	ctx := context.Background()

	blocker := h.Put(t, testfixtures.NewReservationFixture(testfixtures.WithResource("R2"), testfixtures.WithInterval("09:00", "12:00")))
	r, err := create(t, h.Service, testfixtures.WithInterval("09:00", "12:00"))
	require.NoError(t, err)

	r2 := "R2"
	_, err = h.Service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind: booking.KindRoom, ReservationID: r.ID,
		Patch: application.ReservationPatch{ResourceID: &r2},
	})
	requireConflict(t, err, blocker.ID)

	past := testfixtures.Day(-2)
	_, err = h.Service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind: booking.KindRoom, ReservationID: r.ID,
		Patch: application.ReservationPatch{Date: &past},
	})
	requireViolation(t, err, booking.ReasonPastDate)

	_, err = h.Service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind: booking.KindRoom, ReservationID: "missing",
		Patch: application.ReservationPatch{Date: &past},
	})
	assert.ErrorIs(t, err, booking.ErrNotFound)

	_, err = h.Service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind: booking.KindDesk, ReservationID: r.ID,
		Patch: application.ReservationPatch{Date: &past},
	})
	assert.ErrorIs(t, err, booking.ErrNotFound, "a room reservation is not visible as a desk")

	both := testfixtures.Span("13:00", "14:00")
	slot := testfixtures.SlotAfternoon
	_, err = h.Service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind: booking.KindRoom, ReservationID: r.ID,
		Patch: application.ReservationPatch{Interval: &both, TimeslotID: &slot},
	})
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "interval")

	stored, err := h.Store.FindReservationByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "R1", stored.ResourceID, "rejected updates leave the reservation unchanged")
}

func TestUpdateAuthorization(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	ctx := context.Background()

	r, err := create(t, h.Service)
	require.NoError(t, err)
	later := testfixtures.Span("14:00", "15:00")
	other := testfixtures.EmployeeNormal2

	_, err = h.Service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind: booking.KindRoom, ReservationID: r.ID, ActorID: testfixtures.EmployeeNormal2,
		Patch: application.ReservationPatch{Interval: &later},
	})
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	_, err = h.Service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind: booking.KindRoom, ReservationID: r.ID, ActorID: testfixtures.EmployeeNormal,
		Patch: application.ReservationPatch{EmployeeID: &other},
	})
	assert.ErrorIs(t, err, application.ErrUnauthorized, "owners cannot hand a reservation to someone else")

	updated, err := h.Service.UpdateReservation(ctx, application.UpdateReservationParams{
		Kind: booking.KindRoom, ReservationID: r.ID, ActorID: testfixtures.EmployeeOperator,
		Patch: application.ReservationPatch{EmployeeID: &other},
	})
	require.NoError(t, err)
	assert.Equal(t, other, updated.EmployeeID)

	err = h.Service.CancelReservation(ctx, application.CancelReservationParams{
		Kind: booking.KindRoom, ReservationID: r.ID, ActorID: testfixtures.EmployeeNormal,
	})
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	require.NoError(t, h.Service.CancelReservation(ctx, application.CancelReservationParams{
		Kind: booking.KindRoom, ReservationID: r.ID, ActorID: testfixtures.EmployeeNormal2,
	}))
}

func TestTimeslotIsDenormalised(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	ctx := context.Background()

	r, err := h.Service.CreateReservation(ctx, application.CreateReservationParams{
		Kind:       booking.KindRoom,
		EmployeeID: testfixtures.EmployeeNormal,
		ResourceID: "R1",
		Date:       testfixtures.Day(1),
		TimeslotID: testfixtures.SlotMorning,
	})
	require.NoError(t, err)
	assert.Equal(t, testfixtures.Span("09:00", "12:00"), r.Interval)
	assert.Equal(t, testfixtures.SlotMorning, r.TimeslotID)

	require.NoError(t, h.Store.UpsertTimeslot(ctx, booking.Timeslot{
		ID: testfixtures.SlotMorning, Name: "Early", Interval: testfixtures.Span("07:00", "08:00"),
	}))
	stored, err := h.Store.FindReservationByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, testfixtures.Span("09:00", "12:00"), stored.Interval)

	_, err = h.Service.CreateReservation(ctx, application.CreateReservationParams{
		Kind:       booking.KindRoom,
		EmployeeID: testfixtures.EmployeeNormal,
		ResourceID: "R2",
		Date:       testfixtures.Day(1),
		TimeslotID: "brunch",
	})
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	ctx := context.Background()
	interval := testfixtures.Span("09:00", "10:00")
	reversed := booking.Interval{Start: booking.NewTimeOfDay(12, 0), End: booking.NewTimeOfDay(9, 0)}

	cases := []struct {
		name   string
		params application.CreateReservationParams
		field  string
	}{
		{"missing employee", application.CreateReservationParams{Kind: booking.KindRoom, ResourceID: "R1", Date: testfixtures.Day(1), Interval: &interval}, "employee_id"},
		{"missing resource", application.CreateReservationParams{Kind: booking.KindRoom, EmployeeID: "E", Date: testfixtures.Day(1), Interval: &interval}, "resource_id"},
		{"missing date", application.CreateReservationParams{Kind: booking.KindRoom, EmployeeID: "E", ResourceID: "R1", Interval: &interval}, "date"},
		{"no interval", application.CreateReservationParams{Kind: booking.KindRoom, EmployeeID: "E", ResourceID: "R1", Date: testfixtures.Day(1)}, "interval"},
		{"reversed interval", application.CreateReservationParams{Kind: booking.KindRoom, EmployeeID: "E", ResourceID: "R1", Date: testfixtures.Day(1), Interval: &reversed}, "interval"},
		{"unknown kind", application.CreateReservationParams{Kind: "locker", EmployeeID: "E", ResourceID: "L1", Date: testfixtures.Day(1), Interval: &interval}, "kind"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.Service.CreateReservation(ctx, tc.params)
			var vErr *application.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.FieldErrors, tc.field)
		})
	}

	_, err := create(t, h.Service, testfixtures.WithEmployee("nobody"))
	assert.ErrorIs(t, err, booking.ErrNotFound)
	_, err = create(t, h.Service, testfixtures.WithResource("R9"))
	assert.ErrorIs(t, err, booking.ErrNotFound)
	_, err = create(t, h.Service, testfixtures.WithResource("D1"))
	assert.ErrorIs(t, err, booking.ErrNotFound, "resource ids are scoped by kind")
}

func TestAvailabilityQueries(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	ctx := context.Background()
	day := testfixtures.Day(1)
	h.Put(t, testfixtures.NewReservationFixture(testfixtures.WithResource("R1"), testfixtures.WithInterval("09:00", "12:00")))

	morning := testfixtures.Span("10:00", "11:00")
	ids, err := h.Service.ListAvailable(ctx, booking.KindRoom, day, morning)
	require.NoError(t, err)
	assert.Equal(t, []string{"R2"}, ids)

	ids, err = h.Service.ListAvailable(ctx, booking.KindRoom, day, testfixtures.Span("12:00", "13:00"))
	require.NoError(t, err)
	assert.Equal(t, []string{"R1", "R2"}, ids)

	ids, err = h.Service.FindAvailable(ctx, application.AvailabilityQuery{Kind: booking.KindRoom, Date: day, Interval: &morning, ResourceID: "R1"})
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = h.Service.FindAvailable(ctx, application.AvailabilityQuery{Kind: booking.KindRoom, Date: day, TimeslotID: testfixtures.SlotAfternoon, ResourceID: "R1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, ids)

	_, err = h.Service.FindAvailable(ctx, application.AvailabilityQuery{Kind: booking.KindRoom, Date: day, Interval: &morning, ResourceID: "R9"})
	assert.ErrorIs(t, err, booking.ErrNotFound)

	free, err := h.Service.IsAvailable(ctx, booking.KindRoom, "R1", day, morning)
	require.NoError(t, err)
	assert.False(t, free)
	free, err = h.Service.IsAvailable(ctx, booking.KindRoom, "R1", day.AddDate(0, 0, 1), morning)
	require.NoError(t, err)
	assert.True(t, free)

	desks, err := h.Service.ListAvailable(ctx, booking.KindDesk, day, morning)
	require.NoError(t, err)
	assert.Equal(t, []string{"D1", "D2", "D3"}, desks, "kinds do not share reservations")

	gaps, err := h.Service.FreeSlots(ctx, booking.KindRoom, "R1", day, testfixtures.Span("08:00", "18:00"))
	require.NoError(t, err)
	assert.Equal(t, []booking.Interval{testfixtures.Span("08:00", "09:00"), testfixtures.Span("12:00", "18:00")}, gaps)
}

func TestHistoryAndListing(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	ctx := context.Background()

	old := h.Put(t, testfixtures.NewReservationFixture(testfixtures.WithDate(testfixtures.Day(-3))))
	h.Put(t, testfixtures.NewReservationFixture(testfixtures.WithDate(testfixtures.Day(-20))))
	upcoming := h.Put(t, testfixtures.NewReservationFixture(testfixtures.WithDate(testfixtures.Day(1))))
	h.Put(t, testfixtures.NewReservationFixture(testfixtures.WithDate(testfixtures.Day(-1)), testfixtures.WithEmployee(testfixtures.EmployeeNormal2)))

	history, err := h.Service.History(ctx, booking.KindRoom, testfixtures.EmployeeNormal)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, old.ID, history[0].ID)

	from := testfixtures.Today()
	listed, err := h.Service.ListReservations(ctx, application.ListReservationsParams{
		Kind: booking.KindRoom, EmployeeID: testfixtures.EmployeeNormal, From: &from,
	})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, upcoming.ID, listed[0].ID)

	got, err := h.Service.GetReservation(ctx, booking.KindRoom, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, upcoming.ResourceID, got.ResourceID)
}

func TestEmployeeRole(t *testing.T) {
	h := testfixtures.NewBookingHarness(t)
	ctx := context.Background()

	role, err := h.Service.EmployeeRole(ctx, testfixtures.EmployeeOperator)
	require.NoError(t, err)
	assert.Equal(t, booking.RoleOperator, role)

	require.NoError(t, h.Store.UpsertEmployee(ctx, booking.Employee{ID: "X", Role: "INTERN"}))
	role, err = h.Service.EmployeeRole(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, booking.RoleNormal, role)

	_, err = h.Service.EmployeeRole(ctx, "ghost")
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

// flakyStore fails or stalls the resource+date query.
type flakyStore struct {
	*memory.Storage
	fail  error
	stall bool
	stale atomic.Int32
}

func (s *flakyStore) FindReservationsByResourceAndDate(ctx context.Context, kind booking.Kind, resourceID string, date time.Time) ([]booking.Reservation, error) {
	switch {
	case s.fail != nil:
		return nil, s.fail
	case s.stall:
		<-ctx.Done()
		return nil, ctx.Err()
	case s.stale.Add(-1) >= 0:
		return nil, nil
	}
	return s.Storage.FindReservationsByResourceAndDate(ctx, kind, resourceID, date)
}

func newFlakyHarness(t *testing.T, store *flakyStore, timeout time.Duration) *application.BookingService {
	t.Helper()
	base := testfixtures.NewBookingHarness(t)
	store.Storage = base.Store
	return base.Factory.NewBookingService(testfixtures.BookingServiceDeps{
		Dependencies: application.DependenciesFromStore(store),
		StoreTimeout: timeout,
	})
}

func TestStorageFailuresAreRetryable(t *testing.T) {
	store := &flakyStore{fail: errors.New("disk on fire")}
	svc := newFlakyHarness(t, store, 0)

	_, err := create(t, svc)
	require.Error(t, err)
	assert.ErrorIs(t, err, booking.ErrStorage)
	assert.True(t, booking.IsRetryable(err))
	assert.Equal(t, "storage", application.ErrorKind(err))
}

func TestStoreTimeoutIsRetryableStorageError(t *testing.T) {
	store := &flakyStore{stall: true}
	svc := newFlakyHarness(t, store, 20*time.Millisecond)

	_, err := create(t, svc)
	require.Error(t, err)
	assert.True(t, booking.IsRetryable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStoreLevelConflictMapsToResourceConflict(t *testing.T) {
	store := &flakyStore{}
	svc := newFlakyHarness(t, store, 0)
	winner := store.Storage
	require.NoError(t, winner.SaveReservation(context.Background(),
		testfixtures.NewReservationFixture(testfixtures.WithReservationID("other-process")).Reservation()))

	// The first read misses the competing writer, as if it committed from
	// another process between the check and the write.
	store.stale.Store(1)
	_, err := create(t, svc, testfixtures.WithEmployee(testfixtures.EmployeeNormal2))
	requireConflict(t, err, "other-process")
}
