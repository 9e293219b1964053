package availability

import (
	"time"

	"github.com/sol1corejz/trailerent/internal/models"
)

// Overlaps reports whether two booking windows collide. The boundaries are
// inclusive on both sides, so a booking ending exactly when another starts
// still counts as a conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// Conflicts scans existing bookings for one that blocks the requested window.
// CLOSED and CANCELLED bookings never block.
func Conflicts(existing []models.Booking, start, end time.Time) bool {
	for _, b := range existing {
		if models.IsTerminalBooking(b.Status) {
			continue
		}
		if Overlaps(b.StartTime, b.EndTime, start, end) {
			return true
		}
	}
	return false
}
