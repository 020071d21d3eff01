package middleware

import (
	"os"

	"github.com/gofiber/fiber/v2"
)

// APIKeyAuth guards the staff routes with the shared dashboard key.
// Guest routes authenticate with session tokens instead.
func APIKeyAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get("X-API-KEY")
		expectedAPIKey := os.Getenv("API_KEY")

		if expectedAPIKey == "" || apiKey != expectedAPIKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		return c.Next()
	}
}
