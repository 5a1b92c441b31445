package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

// NewAPIKeyAuth checks the static API key on every counter table request,
// accepted either as the apikey header or as a bearer token. An empty
// configured key disables the check (development default).
func NewAPIKeyAuth(apiKey string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if apiKey == "" {
			return c.Next()
		}

		if c.Get("apikey") == apiKey {
			return c.Next()
		}
		if token, ok := strings.CutPrefix(c.Get("Authorization"), "Bearer "); ok && token == apiKey {
			return c.Next()
		}

		return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid API key")
	}
}
