package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sol1corejz/trailerent/cmd/config"
	"github.com/sol1corejz/trailerent/internal/logger"
	"github.com/sol1corejz/trailerent/internal/models"
	"go.uber.org/zap"
)

// Notifications are best-effort: every failure is logged and swallowed so a
// Telegram outage never fails the transaction that triggered the message.

var client = &http.Client{Timeout: 10 * time.Second}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

func send(chatID int64, text string) {
	if config.TelegramBotToken == "" {
		return
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		logger.Log.Error("Failed to encode telegram message", zap.Error(err))
		return
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", config.TelegramBotToken)
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		logger.Log.Error("Failed to send telegram message", zap.Int64("chatID", chatID), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Error("Telegram API rejected message",
			zap.Int64("chatID", chatID), zap.Int("status", resp.StatusCode))
	}
}

func bookingCreatedText(booking models.Booking) string {
	return fmt.Sprintf(
		"Booking %s created: %s - %s. To pay: %d, deposit hold: %d.",
		booking.ID, booking.StartTime.Format("02.01.2006 15:04"),
		booking.EndTime.Format("02.01.2006 15:04"), booking.Total, booking.Deposit)
}

func BookingCreated(chatID int64, booking models.Booking) {
	send(chatID, bookingCreatedText(booking))
}

func BookingStatusChanged(chatID int64, booking models.Booking) {
	send(chatID, fmt.Sprintf("Booking %s is now %s.", booking.ID, booking.Status))
}

func VerificationUpdated(chatID int64, status string) {
	switch status {
	case models.VerificationVerified:
		send(chatID, "Your documents were verified. You now have full access.")
	case models.VerificationRejected:
		send(chatID, "Your documents were rejected. Please upload them again.")
	}
}
