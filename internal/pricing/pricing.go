package pricing

import (
	"fmt"
	"time"

	"github.com/sol1corejz/trailerent/internal/domain"
	"github.com/sol1corejz/trailerent/internal/models"
)

type Quote struct {
	BaseCost       int64    `json:"baseCost"`
	AdditionalCost int64    `json:"additionalCost"`
	Deposit        int64    `json:"deposit"`
	Total          int64    `json:"total"`
	Breakdown      []string `json:"breakdown"`
}

// Calculate prices a candidate booking against the trailer rate card. Pure:
// same inputs always produce the same quote. The deposit is tracked as a
// separate hold and is never summed into Total.
func Calculate(trailer models.Trailer, start, end time.Time, rentalType string, pickup bool) (Quote, error) {
	if !end.After(start) {
		return Quote{}, domain.InvalidRangeError{Field: "endTime", Msg: "must be after startTime"}
	}

	var q Quote

	switch rentalType {
	case models.RentalTypeHourly:
		hours := ceilDiv(end.Sub(start), time.Hour)
		if hours <= trailer.MinHours {
			q.BaseCost = trailer.MinCost
			q.Breakdown = append(q.Breakdown,
				fmt.Sprintf("Minimum block (%d h): %d", trailer.MinHours, trailer.MinCost))
		} else {
			extra := hours - trailer.MinHours
			q.BaseCost = trailer.MinCost + extra*trailer.HourPrice
			q.Breakdown = append(q.Breakdown,
				fmt.Sprintf("Minimum block (%d h): %d", trailer.MinHours, trailer.MinCost),
				fmt.Sprintf("Extra hours (%d x %d): %d", extra, trailer.HourPrice, extra*trailer.HourPrice))
		}
	case models.RentalTypeDaily:
		days := ceilDiv(end.Sub(start), 24*time.Hour)
		if days < 1 {
			days = 1
		}
		q.BaseCost = days * trailer.DayPrice
		q.Breakdown = append(q.Breakdown,
			fmt.Sprintf("Days (%d x %d): %d", days, trailer.DayPrice, q.BaseCost))
	default:
		return Quote{}, domain.InvalidRangeError{Field: "rentalType", Msg: "must be HOURLY or DAILY"}
	}

	if pickup {
		q.AdditionalCost = trailer.PickupPrice
		q.Breakdown = append(q.Breakdown, fmt.Sprintf("Pickup: %d", trailer.PickupPrice))
	}

	q.Deposit = trailer.Deposit
	q.Total = q.BaseCost + q.AdditionalCost
	q.Breakdown = append(q.Breakdown,
		fmt.Sprintf("Total: %d", q.Total),
		fmt.Sprintf("Deposit (hold): %d", q.Deposit))

	return q, nil
}

func ceilDiv(d, unit time.Duration) int64 {
	n := int64(d / unit)
	if d%unit != 0 {
		n++
	}
	return n
}
