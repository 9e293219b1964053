package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sol1corejz/trailerent/cmd/config"
	"github.com/sol1corejz/trailerent/internal/auth"
	"github.com/sol1corejz/trailerent/internal/domain"
	"github.com/sol1corejz/trailerent/internal/logger"
	"github.com/sol1corejz/trailerent/internal/middleware"
	"github.com/sol1corejz/trailerent/internal/models"
	"github.com/sol1corejz/trailerent/internal/storage"
	"github.com/sol1corejz/trailerent/internal/telegram"
	"github.com/sol1corejz/trailerent/internal/tokenstorage"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type TelegramAuthRequest struct {
	InitData string `json:"initData" validate:"required"`
}

type UserResponse struct {
	ID                      string `json:"id"`
	TelegramID              int64  `json:"telegramId"`
	FirstName               string `json:"firstName"`
	LastName                string `json:"lastName"`
	Username                string `json:"username"`
	Phone                   string `json:"phone"`
	PhoneVerificationStatus string `json:"phoneVerificationStatus"`
	VerificationStatus      string `json:"verificationStatus"`
}

func userResponse(user models.User) UserResponse {
	return UserResponse{
		ID:                      user.ID.String(),
		TelegramID:              user.TelegramID,
		FirstName:               user.FirstName,
		LastName:                user.LastName,
		Username:                user.Username,
		Phone:                   user.Phone,
		PhoneVerificationStatus: user.PhoneVerificationStatus,
		VerificationStatus:      user.VerificationStatus,
	}
}

func TelegramAuthHandler(c *fiber.Ctx) error {
	var request TelegramAuthRequest
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if !telegram.VerifyInitData(request.InitData, config.TelegramBotToken) {
		logger.Log.Warn("Rejected initData with bad signature")
		return respondError(c, fiber.StatusUnauthorized, "initData signature check failed")
	}

	tgUser, err := telegram.ParseUser(request.InitData)
	if err != nil {
		logger.Log.Warn("initData verified but user field is unusable", zap.Error(err))
		return respondError(c, fiber.StatusUnauthorized, "initData has no valid user")
	}

	user, err := storage.UpsertTelegramUser(ctx, tgUser.ID, tgUser.FirstName, tgUser.LastName, tgUser.Username)
	if err != nil {
		logger.Log.Error("Error upserting telegram user", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		logger.Log.Error("Error generating token", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	tokenstorage.AddToken(token)

	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  time.Now().Add(auth.TokenExp),
		HTTPOnly: true,
	})

	return respondData(c, fiber.StatusOK, fiber.Map{
		"user":  userResponse(user),
		"token": token,
	})
}

func LogoutHandler(c *fiber.Ctx) error {
	if token := middleware.TokenFromRequest(c); token != "" {
		tokenstorage.RevokeToken(token)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	return respondData(c, fiber.StatusOK, fiber.Map{
		"message": "Logged out",
	})
}

type AdminLoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func AdminLoginHandler(c *fiber.Ctx) error {
	var request AdminLoginRequest
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	admin, err := storage.GetAdminByLogin(ctx, request.Login)
	if err != nil {
		var notFound domain.NotFoundError
		if errors.As(err, &notFound) {
			return respondError(c, fiber.StatusUnauthorized, "Wrong login or password")
		}
		logger.Log.Error("Error while querying admin", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	if err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(request.Password)); err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Wrong login or password")
	}

	token, err := auth.GenerateAdminToken(admin.ID)
	if err != nil {
		logger.Log.Error("Error generating token", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	tokenstorage.AddToken(token)

	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  time.Now().Add(auth.TokenExp),
		HTTPOnly: true,
	})

	return respondData(c, fiber.StatusOK, fiber.Map{
		"token": token,
	})
}
