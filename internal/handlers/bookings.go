package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sol1corejz/trailerent/internal/domain"
	"github.com/sol1corejz/trailerent/internal/logger"
	"github.com/sol1corejz/trailerent/internal/models"
	"github.com/sol1corejz/trailerent/internal/notify"
	"github.com/sol1corejz/trailerent/internal/pricing"
	"github.com/sol1corejz/trailerent/internal/storage"
	"go.uber.org/zap"
)

type PricingSnapshot struct {
	BaseCost       int64 `json:"baseCost"`
	AdditionalCost int64 `json:"additionalCost"`
	Deposit        int64 `json:"deposit"`
	Total          int64 `json:"total"`
}

type BookingResponse struct {
	ID         string          `json:"id"`
	TrailerID  int64           `json:"trailerId"`
	StartTime  time.Time       `json:"startTime"`
	EndTime    time.Time       `json:"endTime"`
	RentalType string          `json:"rentalType"`
	Pickup     bool            `json:"pickup"`
	Pricing    PricingSnapshot `json:"pricing"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func bookingResponse(b models.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID.String(),
		TrailerID:  b.TrailerID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		RentalType: b.RentalType,
		Pickup:     b.Pickup,
		Pricing: PricingSnapshot{
			BaseCost:       b.BaseCost,
			AdditionalCost: b.AdditionalCost,
			Deposit:        b.Deposit,
			Total:          b.Total,
		},
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
	}
}

func CreateBookingHandler(c *fiber.Ctx) error {
	var request QuoteRequest
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	userID := c.Locals("userID").(uuid.UUID)

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

	// Pricing snapshot is taken here, before the insert. Later rate card
	// changes never touch existing bookings.
	quote, err := pricing.Calculate(trailer, start, end, request.RentalType, request.AdditionalServices.Pickup)
	if err != nil {
		return respondDomainError(c, err)
	}

	booking := models.Booking{
		UserID:         userID,
		TrailerID:      trailer.ID,
		StartTime:      start,
		EndTime:        end,
		RentalType:     request.RentalType,
		Pickup:         request.AdditionalServices.Pickup,
		BaseCost:       quote.BaseCost,
		AdditionalCost: quote.AdditionalCost,
		Deposit:        quote.Deposit,
		Total:          quote.Total,
	}

	payment, err := storage.CreateBooking(ctx, &booking)
	if err != nil {
		return respondDomainError(c, err)
	}

	// Announce the rental payment to the gateway so the poller has something
	// to observe. On failure the booking stays PENDING_PAYMENT with a PENDING
	// payment row; the client can cancel and rebook.
	if err = registerWithGateway(payment); err != nil {
		logger.Log.Error("Payment gateway rejected rental payment",
			zap.String("paymentID", payment.ID.String()),
			zap.String("bookingID", booking.ID.String()), zap.Error(err))
		return respondDomainError(c, err)
	}

	logger.Log.Info("Booking created",
		zap.String("bookingID", booking.ID.String()),
		zap.String("userID", userID.String()),
		zap.Int64("trailerID", trailer.ID))

	if user, err := storage.GetUserByID(ctx, userID); err == nil {
		go notify.BookingCreated(user.TelegramID, booking)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{
		"id":            booking.ID.String(),
		"status":        booking.Status,
		"paymentId":     payment.ID.String(),
		"totalAmount":   booking.Total,
		"depositAmount": booking.Deposit,
	})
}

func GetBookingsHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	userID := c.Locals("userID").(uuid.UUID)

	bookings, err := storage.GetUserBookings(ctx, userID)
	if err != nil {
		logger.Log.Error("Error getting user bookings", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, bookingResponse(b))
	}

	return respondData(c, fiber.StatusOK, response)
}

// ownBooking loads a booking and hides its existence from non-owners.
func ownBooking(ctx context.Context, c *fiber.Ctx) (models.Booking, error) {
	userID := c.Locals("userID").(uuid.UUID)

	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}

	booking, err := storage.GetBookingByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if booking.UserID != userID {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return booking, nil
}

func GetBookingHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	booking, err := ownBooking(ctx, c)
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondData(c, fiber.StatusOK, bookingResponse(booking))
}

func CancelBookingHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	booking, err := ownBooking(ctx, c)
	if err != nil {
		return respondDomainError(c, err)
	}

	updated, err := storage.UpdateBookingStatus(ctx, booking.ID, models.BookingCancelled)
	if err != nil {
		return respondDomainError(c, err)
	}

	logger.Log.Info("Booking cancelled", zap.String("bookingID", updated.ID.String()))

	return respondData(c, fiber.StatusOK, bookingResponse(updated))
}
