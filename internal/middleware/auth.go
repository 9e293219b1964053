package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sol1corejz/trailerent/internal/auth"
	"github.com/sol1corejz/trailerent/internal/tokenstorage"
)

// TokenFromRequest accepts either the jwt cookie set on login or an
// Authorization: Bearer header (the Mini-App uses the header).
func TokenFromRequest(c *fiber.Ctx) string {
	if header := c.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Cookies("jwt")
}

func AuthMiddleware(c *fiber.Ctx) error {
	tokenString := TokenFromRequest(c)
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	if !tokenstorage.CheckToken(tokenString) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Token revoked or unknown",
		})
	}

	userID, err := auth.GetUserID(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	c.Locals("userID", userID)
	return c.Next()
}

func AdminMiddleware(c *fiber.Ctx) error {
	tokenString := TokenFromRequest(c)
	if tokenString == "" || !tokenstorage.CheckToken(tokenString) || !auth.IsAdmin(tokenString) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Admin access required",
		})
	}

	userID, err := auth.GetUserID(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	c.Locals("userID", userID)
	return c.Next()
}
