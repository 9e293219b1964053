package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sol1corejz/trailerent/internal/logger"
	"github.com/sol1corejz/trailerent/internal/storage"
	"go.uber.org/zap"
)

func GetMeHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	userID := c.Locals("userID").(uuid.UUID)

	user, err := storage.GetUserByID(ctx, userID)
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondData(c, fiber.StatusOK, userResponse(user))
}

type UpdatePhoneRequest struct {
	Phone string `json:"phone" validate:"required"`
}

func UpdatePhoneHandler(c *fiber.Ctx) error {
	var request UpdatePhoneRequest
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	userID := c.Locals("userID").(uuid.UUID)

	if err := c.BodyParser(&request); err != nil || request.Phone == "" {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := storage.UpdateUserPhone(ctx, userID, request.Phone); err != nil {
		return respondDomainError(c, err)
	}

	logger.Log.Info("Phone updated, verification pending", zap.String("userID", userID.String()))

	user, err := storage.GetUserByID(ctx, userID)
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondData(c, fiber.StatusOK, userResponse(user))
}
