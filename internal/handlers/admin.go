package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sol1corejz/trailerent/internal/logger"
	"github.com/sol1corejz/trailerent/internal/models"
	"github.com/sol1corejz/trailerent/internal/notify"
	"github.com/sol1corejz/trailerent/internal/storage"
	"go.uber.org/zap"
)

type TrailerRequest struct {
	LocationID  int64            `json:"locationId" validate:"required"`
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Pricing     RateCardResponse `json:"pricing"`
}

func (r TrailerRequest) validate() string {
	if r.Name == "" {
		return "name is required"
	}
	if r.LocationID <= 0 {
		return "locationId is required"
	}
	if r.Pricing.MinHours < 0 || r.Pricing.MinCost < 0 || r.Pricing.HourPrice < 0 ||
		r.Pricing.DayPrice < 0 || r.Pricing.Deposit < 0 || r.Pricing.PickupPrice < 0 {
		return "rate card values must be non-negative"
	}
	return ""
}

func CreateTrailerHandler(c *fiber.Ctx) error {
	var request TrailerRequest
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if msg := request.validate(); msg != "" {
		return respondError(c, fiber.StatusBadRequest, msg)
	}

	trailer := models.Trailer{
		LocationID:  request.LocationID,
		Name:        request.Name,
		Description: request.Description,
		Status:      models.TrailerAvailable,
		MinHours:    request.Pricing.MinHours,
		MinCost:     request.Pricing.MinCost,
		HourPrice:   request.Pricing.HourPrice,
		DayPrice:    request.Pricing.DayPrice,
		Deposit:     request.Pricing.Deposit,
		PickupPrice: request.Pricing.PickupPrice,
	}

	if err := storage.CreateTrailer(ctx, &trailer); err != nil {
		logger.Log.Error("Error creating trailer", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return respondData(c, fiber.StatusCreated, trailerResponse(trailer))
}

func UpdateTrailerHandler(c *fiber.Ctx) error {
	var request TrailerRequest
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	trailerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "trailer id must be an integer")
	}

	if err = c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if msg := request.validate(); msg != "" {
		return respondError(c, fiber.StatusBadRequest, msg)
	}

	trailer := models.Trailer{
		ID:          trailerID,
		LocationID:  request.LocationID,
		Name:        request.Name,
		Description: request.Description,
		MinHours:    request.Pricing.MinHours,
		MinCost:     request.Pricing.MinCost,
		HourPrice:   request.Pricing.HourPrice,
		DayPrice:    request.Pricing.DayPrice,
		Deposit:     request.Pricing.Deposit,
		PickupPrice: request.Pricing.PickupPrice,
	}

	if err = storage.UpdateTrailer(ctx, trailer); err != nil {
		return respondDomainError(c, err)
	}

	updated, err := storage.GetTrailerByID(ctx, trailerID)
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondData(c, fiber.StatusOK, trailerResponse(updated))
}

type TrailerStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func UpdateTrailerStatusHandler(c *fiber.Ctx) error {
	var request TrailerStatusRequest
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	trailerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "trailer id must be an integer")
	}

	if err = c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	switch request.Status {
	case models.TrailerAvailable, models.TrailerRented, models.TrailerMaintenance:
	default:
		return respondError(c, fiber.StatusBadRequest, "status must be AVAILABLE, RENTED or MAINTENANCE")
	}

	if err = storage.UpdateTrailerStatus(ctx, trailerID, request.Status); err != nil {
		return respondDomainError(c, err)
	}

	logger.Log.Info("Trailer status updated",
		zap.Int64("trailerID", trailerID), zap.String("status", request.Status))

	return respondData(c, fiber.StatusOK, fiber.Map{
		"id":     trailerID,
		"status": request.Status,
	})
}

type LocationRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
}

func CreateLocationHandler(c *fiber.Ctx) error {
	var request LocationRequest
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := c.BodyParser(&request); err != nil || request.Name == "" {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	location := models.Location{
		Name:    request.Name,
		Address: request.Address,
	}

	if err := storage.CreateLocation(ctx, &location); err != nil {
		logger.Log.Error("Error creating location", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return respondData(c, fiber.StatusCreated, location)
}

func AdminGetBookingsHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	bookings, err := storage.GetAllBookings(ctx, c.Query("status"))
	if err != nil {
		logger.Log.Error("Error getting bookings", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, bookingResponse(b))
	}

	return respondData(c, fiber.StatusOK, response)
}

type BookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func AdminUpdateBookingStatusHandler(c *fiber.Ctx) error {
	var request BookingStatusRequest
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusNotFound, "booking not found")
	}

	if err = c.BodyParser(&request); err != nil || request.Status == "" {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	booking, err := storage.UpdateBookingStatus(ctx, bookingID, request.Status)
	if err != nil {
		return respondDomainError(c, err)
	}

	logger.Log.Info("Booking status updated by admin",
		zap.String("bookingID", booking.ID.String()),
		zap.String("status", booking.Status))

	if user, err := storage.GetUserByID(ctx, booking.UserID); err == nil {
		go notify.BookingStatusChanged(user.TelegramID, booking)
	}

	return respondData(c, fiber.StatusOK, bookingResponse(booking))
}

type VerificationRequest struct {
	Status string `json:"status" validate:"required"`
}

func AdminUpdateUserVerificationHandler(c *fiber.Ctx) error {
	var request VerificationRequest
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusNotFound, "user not found")
	}

	if err = c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	switch request.Status {
	case models.VerificationVerified, models.VerificationRejected:
	default:
		return respondError(c, fiber.StatusBadRequest, "status must be VERIFIED or REJECTED")
	}

	user, err := storage.UpdateUserVerification(ctx, userID, request.Status)
	if err != nil {
		return respondDomainError(c, err)
	}

	logger.Log.Info("User verification updated",
		zap.String("userID", user.ID.String()),
		zap.String("status", user.VerificationStatus))

	go notify.VerificationUpdated(user.TelegramID, user.VerificationStatus)

	return respondData(c, fiber.StatusOK, userResponse(user))
}
