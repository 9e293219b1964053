package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sol1corejz/trailerent/cmd/config"
	"github.com/sol1corejz/trailerent/internal/domain"
	"github.com/sol1corejz/trailerent/internal/logger"
	"github.com/sol1corejz/trailerent/internal/models"
	"github.com/sol1corejz/trailerent/internal/storage"
	"go.uber.org/zap"
)

type PaymentResponse struct {
	ID        string    `json:"id"`
	BookingID string    `json:"bookingId"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func paymentResponse(p models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID.String(),
		BookingID: p.BookingID.String(),
		Type:      p.Type,
		Amount:    p.Amount,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
}

type gatewayCreateRequest struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Type      string `json:"type"`
}

// registerWithGateway announces the payment to the gateway. The call is not
// retried: a second create could double-charge, so on failure the payment row
// stays PENDING and the client starts over.
func registerWithGateway(payment models.Payment) error {
	if config.PaymentGatewayAddress == "" {
		return nil
	}

	body, err := json.Marshal(gatewayCreateRequest{
		PaymentID: payment.ID.String(),
		Amount:    payment.Amount,
		Type:      payment.Type,
	})
	if err != nil {
		return err
	}

	resp, err := http.Post(config.PaymentGatewayAddress+"/api/payments", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return domain.UpstreamError{Service: "payment gateway", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.UpstreamError{Service: "payment gateway"}
	}
	return nil
}

// CreateDepositHandler opens the DEPOSIT_HOLD payment for a PAID booking.
// The rental payment is created together with the booking; the hold is a
// separate flow so deposit money never mixes into the rental total.
func CreateDepositHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	booking, err := ownBooking(ctx, c)
	if err != nil {
		return respondDomainError(c, err)
	}

	if booking.Status != models.BookingPaid {
		return respondDomainError(c, domain.ConflictError{
			Resource: "booking",
			Msg:      "deposit hold is only opened for paid bookings",
		})
	}

	payment := models.Payment{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		Type:      models.PaymentTypeDepositHold,
		Amount:    booking.Deposit,
	}

	if err = storage.CreatePayment(ctx, &payment); err != nil {
		logger.Log.Error("Error creating deposit payment", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	if err = registerWithGateway(payment); err != nil {
		logger.Log.Error("Payment gateway rejected deposit hold",
			zap.String("paymentID", payment.ID.String()), zap.Error(err))
		return respondDomainError(c, err)
	}

	logger.Log.Info("Deposit hold created",
		zap.String("paymentID", payment.ID.String()),
		zap.String("bookingID", booking.ID.String()))

	return respondData(c, fiber.StatusCreated, paymentResponse(payment))
}

func GetPaymentHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	userID := c.Locals("userID").(uuid.UUID)

	paymentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondDomainError(c, domain.NotFoundError{Resource: "payment"})
	}

	payment, err := storage.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return respondDomainError(c, err)
	}
	if payment.UserID != userID {
		return respondDomainError(c, domain.NotFoundError{Resource: "payment"})
	}

	return respondData(c, fiber.StatusOK, paymentResponse(payment))
}
