package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sol1corejz/trailerent/cmd/config"
	"github.com/sol1corejz/trailerent/internal/logger"
	"github.com/sol1corejz/trailerent/internal/models"
	"github.com/sol1corejz/trailerent/internal/notify"
	"github.com/sol1corejz/trailerent/internal/storage"
	"go.uber.org/zap"
)

type GatewayResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

const WorkerInterval = 5 * time.Second

// InitPaymentWatcher starts the poller that drives PENDING/PROCESSING
// payments to a terminal state from gateway status reports. Status lookups
// are idempotent on the gateway side, so retrying on the next tick is safe.
func InitPaymentWatcher() {
	go startWorker()

	logger.Log.Info("Payment status worker started")
}

func startWorker() {
	ticker := time.NewTicker(WorkerInterval)
	for range ticker.C {
		checkPaymentsForProcessing()
	}
}

func checkPaymentsForProcessing() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	payments, err := storage.GetUnfinishedPayments(ctx)
	if err != nil {
		logger.Log.Error("Error getting unfinished payments", zap.Error(err))
		return
	}

	for _, payment := range payments {
		gatewayResp, err := queryGateway(payment.ID.String())
		if err != nil {
			logger.Log.Error("Failed to query payment gateway",
				zap.String("paymentID", payment.ID.String()), zap.Error(err))
			continue
		}

		applyGatewayStatus(ctx, payment, gatewayResp)
	}
}

func queryGateway(paymentID string) (GatewayResponse, error) {
	url := fmt.Sprintf("%s%s%s", config.PaymentGatewayAddress, "/api/payments/", paymentID)
	resp, err := http.Get(url)
	if err != nil {
		return GatewayResponse{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GatewayResponse{}, fmt.Errorf("unexpected gateway status: %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)

	var gatewayResp GatewayResponse
	if err = json.Unmarshal(body, &gatewayResp); err != nil {
		logger.Log.Error("Failed to decode gateway response", zap.Error(err))
		return GatewayResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return gatewayResp, nil
}

// MapGatewayStatus translates gateway statuses into the payment lifecycle.
// Anything unrecognized keeps the payment PENDING for the next tick.
func MapGatewayStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case "succeeded":
		return models.PaymentCompleted
	case "failed", "expired":
		return models.PaymentFailed
	case "canceled":
		return models.PaymentCancelled
	case "processing", "waiting_for_capture":
		return models.PaymentProcessing
	default:
		return models.PaymentPending
	}
}

func applyGatewayStatus(ctx context.Context, payment models.Payment, gatewayResp GatewayResponse) {
	newStatus := MapGatewayStatus(gatewayResp.Status)
	if newStatus == payment.Status {
		return
	}

	updated, booking, err := storage.ApplyPaymentStatus(ctx, payment.ID, newStatus)
	if err != nil {
		logger.Log.Error("Failed to apply payment status",
			zap.String("paymentID", payment.ID.String()),
			zap.String("status", newStatus), zap.Error(err))
		return
	}

	logger.Log.Info("Payment updated",
		zap.String("paymentID", updated.ID.String()),
		zap.String("status", updated.Status))

	if booking.ID == uuid.Nil {
		return
	}

	user, err := storage.GetUserByID(ctx, booking.UserID)
	if err != nil {
		logger.Log.Error("Failed to load booking user for notification", zap.Error(err))
		return
	}
	go notify.BookingStatusChanged(user.TelegramID, booking)
}
