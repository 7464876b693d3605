package scheduler

import (
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

// GroupByResource indexes reservations by resource id.
func GroupByResource(reservations []booking.Reservation) map[string][]booking.Reservation {
	grouped := make(map[string][]booking.Reservation)
	for _, r := range reservations {
		grouped[r.ResourceID] = append(grouped[r.ResourceID], r)
	}
	return grouped
}

// FindAvailableResources returns, in input order, the ids from resourceIDs
// that are free for interval on date. Duplicate ids are reported once.
func FindAvailableResources(resourceIDs []string, date time.Time, interval booking.Interval, reservationsByResource map[string][]booking.Reservation) []string {
	available := make([]string, 0, len(resourceIDs))
	seen := make(map[string]struct{}, len(resourceIDs))
	for _, id := range resourceIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if IsResourceAvailable(id, date, interval, reservationsByResource[id]) {
			available = append(available, id)
		}
	}
	return available
}

// FreeIntervals returns the gaps inside window left by reservations, in order.
func FreeIntervals(window booking.Interval, reservations []booking.Reservation) []booking.Interval {
	busy := make([]booking.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if Overlaps(r.Interval, window) {
			busy = append(busy, r)
		}
	}
	sortByStart(busy)

	var free []booking.Interval
	cursor := window.Start
	for _, r := range busy {
		if r.Interval.Start > cursor {
			free = append(free, booking.Interval{Start: cursor, End: r.Interval.Start})
		}
		if r.Interval.End > cursor {
			cursor = r.Interval.End
		}
	}
	if cursor < window.End {
		free = append(free, booking.Interval{Start: cursor, End: window.End})
	}
	return free
}
