package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sol1corejz/trailerent/internal/logger"
	"github.com/sol1corejz/trailerent/internal/models"
	"github.com/sol1corejz/trailerent/internal/storage"
	"go.uber.org/zap"
)

type RateCardResponse struct {
	MinHours    int64 `json:"minHours"`
	MinCost     int64 `json:"minCost"`
	HourPrice   int64 `json:"hourPrice"`
	DayPrice    int64 `json:"dayPrice"`
	Deposit     int64 `json:"deposit"`
	PickupPrice int64 `json:"pickupPrice"`
}

type TrailerResponse struct {
	ID          int64            `json:"id"`
	LocationID  int64            `json:"locationId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	Pricing     RateCardResponse `json:"pricing"`
}

func trailerResponse(t models.Trailer) TrailerResponse {
	return TrailerResponse{
		ID:          t.ID,
		LocationID:  t.LocationID,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		Pricing: RateCardResponse{
			MinHours:    t.MinHours,
			MinCost:     t.MinCost,
			HourPrice:   t.HourPrice,
			DayPrice:    t.DayPrice,
			Deposit:     t.Deposit,
			PickupPrice: t.PickupPrice,
		},
	}
}

func GetTrailersHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	var locationID int64
	if raw := c.Query("locationId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "locationId must be an integer")
		}
		locationID = parsed
	}

	trailers, err := storage.GetTrailers(ctx, locationID)
	if err != nil {
		logger.Log.Error("Error getting trailers", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	response := make([]TrailerResponse, 0, len(trailers))
	for _, t := range trailers {
		response = append(response, trailerResponse(t))
	}

	return respondData(c, fiber.StatusOK, response)
}

func GetTrailerHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	trailerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "trailer id must be an integer")
	}

	trailer, err := storage.GetTrailerByID(ctx, trailerID)
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondData(c, fiber.StatusOK, trailerResponse(trailer))
}

// GetAvailabilityHandler answers whether a trailer can be booked for the
// requested window. Missing trailers and trailers under maintenance read as
// unavailable rather than erroring.
func GetAvailabilityHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	trailerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "trailer id must be an integer")
	}

	start, err := time.Parse(time.RFC3339, c.Query("startTime"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "startTime must be RFC 3339")
	}
	end, err := time.Parse(time.RFC3339, c.Query("endTime"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "endTime must be RFC 3339")
	}
	if !end.After(start) {
		return respondError(c, fiber.StatusBadRequest, "endTime must be after startTime")
	}

	available, err := storage.IsTrailerAvailable(ctx, trailerID, start, end)
	if err != nil {
		logger.Log.Error("Error checking availability", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{
		"available": available,
	})
}

func GetLocationsHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	locations, err := storage.GetLocations(ctx)
	if err != nil {
		logger.Log.Error("Error getting locations", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return respondData(c, fiber.StatusOK, locations)
}
