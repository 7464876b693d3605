// Package scheduler holds the pure interval logic behind availability checks.
// Every function works on the snapshot it is given and never touches storage.
package scheduler

import (
	"sort"
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

// Overlaps reports whether two half-open intervals share any instant.
// Intervals that only touch ([9,10) and [10,11)) do not overlap.
func Overlaps(a, b booking.Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// FindConflicts returns the reservations in existing that hold resourceID on
// date during interval. A reservation whose ID equals excludeID is skipped so
// an update never conflicts with itself.
func FindConflicts(resourceID string, date time.Time, interval booking.Interval, existing []booking.Reservation, excludeID string) []booking.Reservation {
	day := booking.DateOf(date)
	var conflicts []booking.Reservation
	for _, r := range existing {
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if r.ResourceID != resourceID || !booking.DateOf(r.Date).Equal(day) {
			continue
		}
		if Overlaps(r.Interval, interval) {
			conflicts = append(conflicts, r)
		}
	}
	sortByStart(conflicts)
	return conflicts
}

// IsResourceAvailable reports whether no reservation in existing overlaps the
// requested interval on the resource and date.
func IsResourceAvailable(resourceID string, date time.Time, interval booking.Interval, existing []booking.Reservation) bool {
	return len(FindConflicts(resourceID, date, interval, existing, "")) == 0
}

func sortByStart(reservations []booking.Reservation) {
	sort.SliceStable(reservations, func(i, j int) bool {
		if reservations[i].Interval.Start != reservations[j].Interval.Start {
			return reservations[i].Interval.Start < reservations[j].Interval.Start
		}
		return reservations[i].ID < reservations[j].ID
	})
}
