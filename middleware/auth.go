// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CallerLocal is the fiber Locals key holding the authenticated identity.
const CallerLocal = "user_id"

// UserContextMiddleware extracts the identity the gateway resolved for the
// request. Routes behind it refuse anonymous callers.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		if userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing: %s %s", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}
		c.Locals(CallerLocal, userID)
		return c.Next()
	}
}

// Caller returns the identity stored by UserContextMiddleware, "" if none.
func Caller(c *fiber.Ctx) string {
	id, _ := c.Locals(CallerLocal).(string)
	return id
}
