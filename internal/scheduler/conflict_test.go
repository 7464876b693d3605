package scheduler

import (
	"testing"
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

func iv(startHour, endHour int) booking.Interval {
	return booking.Interval{Start: booking.NewTimeOfDay(startHour, 0), End: booking.NewTimeOfDay(endHour, 0)}
}

var day = booking.NewDate(2026, time.October, 20)

func reservation(id, resourceID string, date time.Time, interval booking.Interval) booking.Reservation {
	return booking.Reservation{ID: id, Kind: booking.KindRoom, ResourceID: resourceID, EmployeeID: "E", Date: date, Interval: interval}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b booking.Interval
		want bool
	}{
		{name: "identical", a: iv(9, 12), b: iv(9, 12), want: true},
		{name: "partial", a: iv(9, 12), b: iv(11, 13), want: true},
		{name: "containment", a: iv(8, 18), b: iv(10, 11), want: true},
		{name: "contained", a: iv(10, 11), b: iv(8, 18), want: true},
		{name: "touching", a: iv(9, 10), b: iv(10, 11), want: false},
		{name: "disjoint", a: iv(7, 8), b: iv(12, 13), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.a, tc.b); got != tc.want {
				t.Fatalf("Overlaps(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := Overlaps(tc.b, tc.a); got != tc.want {
				t.Fatalf("Overlaps is not symmetric for %s and %s", tc.a, tc.b)
			}
		})
	}
}

func TestFindConflicts(t *testing.T) {
	existing := []booking.Reservation{
		reservation("late", "R1", day, iv(14, 16)),
		reservation("early", "R1", day, iv(9, 12)),
		reservation("other-room", "R2", day, iv(9, 12)),
		reservation("other-day", "R1", day.AddDate(0, 0, 1), iv(9, 12)),
	}

	t.Run("returns overlapping reservations sorted by start", func(t *testing.T) {
		got := FindConflicts("R1", day, iv(10, 15), existing, "")
		if len(got) != 2 || got[0].ID != "early" || got[1].ID != "late" {
			t.Fatalf("expected [early late], got %+v", got)
		}
	})

	t.Run("excludes the reservation being updated", func(t *testing.T) {
		got := FindConflicts("R1", day, iv(9, 12), existing, "early")
		if len(got) != 0 {
			t.Fatalf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("containment is detected", func(t *testing.T) {
		got := FindConflicts("R1", day, iv(8, 18), existing, "")
		if len(got) != 2 {
			t.Fatalf("expected 2 conflicts, got %d", len(got))
		}
	})

	t.Run("touching bounds are free", func(t *testing.T) {
		if !IsResourceAvailable("R1", day, iv(12, 14), existing) {
			t.Fatal("expected R1 to be free between reservations")
		}
	})
}

func TestFindAvailableResources(t *testing.T) {
	existing := []booking.Reservation{
		reservation("a", "R1", day, iv(9, 12)),
		reservation("b", "R3", day, iv(13, 14)),
	}
	grouped := GroupByResource(existing)

	got := FindAvailableResources([]string{"R1", "R2", "R3", "R2"}, day, iv(10, 11), grouped)
	if len(got) != 2 || got[0] != "R2" || got[1] != "R3" {
		t.Fatalf("expected [R2 R3], got %v", got)
	}

	got = FindAvailableResources(nil, day, iv(10, 11), grouped)
	if len(got) != 0 {
		t.Fatalf("expected empty result for empty catalogue, got %v", got)
	}
}

func TestFreeIntervals(t *testing.T) {
	existing := []booking.Reservation{
		reservation("a", "R1", day, iv(10, 11)),
		reservation("b", "R1", day, iv(9, 10)),
		reservation("c", "R1", day, iv(13, 19)),
	}

	got := FreeIntervals(iv(8, 18), existing)
	want := []booking.Interval{iv(8, 9), iv(11, 13)}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("gap %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if got := FreeIntervals(iv(8, 18), nil); len(got) != 1 || got[0] != iv(8, 18) {
		t.Fatalf("expected whole window free, got %v", got)
	}
}
