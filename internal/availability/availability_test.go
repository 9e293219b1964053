package availability

import (
	"testing"
	"time"

	"github.com/sol1corejz/trailerent/internal/models"
	"github.com/stretchr/testify/assert"
)

func at(hour int) time.Time {
	return time.Date(2025, 6, 1, hour, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(at(10), at(12), at(11), at(13)))
	assert.True(t, Overlaps(at(11), at(13), at(10), at(12)))
	assert.True(t, Overlaps(at(10), at(14), at(11), at(12)), "contained window")

	assert.False(t, Overlaps(at(10), at(12), at(13), at(15)))
	assert.False(t, Overlaps(at(13), at(15), at(10), at(12)))
}

func TestBackToBackWindowsConflict(t *testing.T) {
	// Boundaries are inclusive: a booking ending at 12:00 blocks one
	// starting at 12:00.
	assert.True(t, Overlaps(at(10), at(12), at(12), at(14)))
	assert.True(t, Overlaps(at(12), at(14), at(10), at(12)))
}

func TestConflictsSkipsTerminalBookings(t *testing.T) {
	existing := []models.Booking{
		{StartTime: at(10), EndTime: at(12), Status: models.BookingCancelled},
		{StartTime: at(10), EndTime: at(12), Status: models.BookingClosed},
	}
	assert.False(t, Conflicts(existing, at(11), at(13)))

	existing = append(existing, models.Booking{
		StartTime: at(10), EndTime: at(12), Status: models.BookingPendingPayment,
	})
	assert.True(t, Conflicts(existing, at(11), at(13)))
}

func TestConflictsEmpty(t *testing.T) {
	assert.False(t, Conflicts(nil, at(10), at(12)))
}
