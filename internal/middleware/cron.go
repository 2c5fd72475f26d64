package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/models"
)

// CronAuth guards the sweep endpoints with a static bearer secret.
func CronAuth(secret string) fiber.Handler {
	expected := []byte("Bearer " + secret)
	return func(c *fiber.Ctx) error {
		got := []byte(c.Get("Authorization"))
		if secret == "" || subtle.ConstantTimeCompare(got, expected) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Unauthorized"))
		}
		return c.Next()
	}
}
