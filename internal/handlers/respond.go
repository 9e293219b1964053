package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sol1corejz/trailerent/internal/domain"
	"github.com/sol1corejz/trailerent/internal/logger"
	"go.uber.org/zap"
)

// Responses follow the Mini-App contract: {"success": true, "data": ...} on
// success, {"success": false, "error": ...} otherwise.

func respondData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

// respondDomainError maps typed domain errors to stable status/message pairs.
// Anything unrecognized is logged and hidden behind a generic 500.
func respondDomainError(c *fiber.Ctx, err error) error {
	var (
		invalidRange      domain.InvalidRangeError
		notFound          domain.NotFoundError
		conflict          domain.ConflictError
		invalidTransition domain.InvalidTransitionError
		authErr           domain.AuthError
		upstream          domain.UpstreamError
	)

	switch {
	case errors.As(err, &invalidRange):
		return respondError(c, fiber.StatusBadRequest, invalidRange.Error())
	case errors.As(err, &notFound):
		return respondError(c, fiber.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		return respondError(c, fiber.StatusConflict, conflict.Error())
	case errors.As(err, &invalidTransition):
		return respondError(c, fiber.StatusConflict, invalidTransition.Error())
	case errors.As(err, &authErr):
		return respondError(c, fiber.StatusUnauthorized, authErr.Error())
	case errors.As(err, &upstream):
		return respondError(c, fiber.StatusBadGateway, upstream.Error())
	default:
		logger.Log.Error("Unhandled error", zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
