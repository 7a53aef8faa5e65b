package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/auth"
)

// UserIDLocalKey is the key under which the authenticated user id is stored
// in Fiber's context locals.
const UserIDLocalKey = "user_id"

// Authn resolves the caller's identity from the Authorization bearer token
// and stores the user id in context locals. Which Authenticator runs (real
// session lookup or the fixed-identity test double) is decided at process
// wiring time, never per request.
func Authn(a auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))

		id, err := a.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"request_id": c.Locals(RequestIDLocalKey),
					"error": fiber.Map{
						"code":    "UNAUTHENTICATED",
						"message": "missing or invalid credentials",
					},
				})
			}
			return fiber.ErrInternalServerError
		}

		c.Locals(UserIDLocalKey, id.UserID)
		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// UserID returns the authenticated user id set by Authn, or "".
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(UserIDLocalKey).(string); ok {
		return v
	}
	return ""
}
