package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sol1corejz/trailerent/internal/domain"
	"github.com/sol1corejz/trailerent/internal/pricing"
	"github.com/sol1corejz/trailerent/internal/storage"
)

type AdditionalServices struct {
	Pickup bool `json:"pickup"`
}

type QuoteRequest struct {
	TrailerID          int64              `json:"trailerId" validate:"required"`
	StartTime          string             `json:"startTime" validate:"required"`
	EndTime            string             `json:"endTime" validate:"required"`
	RentalType         string             `json:"rentalType" validate:"required"`
	AdditionalServices AdditionalServices `json:"additionalServices"`
}

func (r QuoteRequest) window() (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, domain.InvalidRangeError{Field: "startTime", Msg: "must be RFC 3339"}
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, domain.InvalidRangeError{Field: "endTime", Msg: "must be RFC 3339"}
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, domain.InvalidRangeError{Field: "endTime", Msg: "must be after startTime"}
	}
	return start, end, nil
}

func QuoteHandler(c *fiber.Ctx) error {
	var request QuoteRequest
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	start, end, err := request.window()
	if err != nil {
		return respondDomainError(c, err)
	}

	trailer, err := storage.GetTrailerByID(ctx, request.TrailerID)
	if err != nil {
		return respondDomainError(c, err)
	}

	quote, err := pricing.Calculate(trailer, start, end, request.RentalType, request.AdditionalServices.Pickup)
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondData(c, fiber.StatusOK, quote)
}
