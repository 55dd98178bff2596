package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// SessionIDKey is the Locals key holding the validated cart session id.
const SessionIDKey = "session_id"

// TokenValidator resolves a bearer token to a session id.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// SessionRequired is a Fiber middleware that checks for a valid session token.
func SessionRequired(sessions TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		sessionID, err := sessions.Validate(parts[1])
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("session token validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session",
				"error":   err.Error(),
			})
		}

		c.Locals(SessionIDKey, sessionID)
		return c.Next()
	}
}

// SessionID returns the session id stored by SessionRequired.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(SessionIDKey).(string)
	return id
}
