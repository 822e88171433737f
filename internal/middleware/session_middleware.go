package middleware

import (
	"strings"

	"storefront/internal/session"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// SessionCookie carries the signed session token in browsers.
const SessionCookie = "session"

const sessionLocal = "session"

// SessionToken reads the session token from the cookie, falling back to a bearer header.
func SessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SessionRequired is a Fiber middleware that loads the session named by the token.
func SessionRequired(manager *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := SessionToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Session cookie or Authorization header is required",
			})
		}

		s, err := manager.Resolve(tokenString)
		if err != nil {
			log.Printf("Session validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session",
				"error":   err.Error(),
			})
		}

		// Store the session in Fiber context for subsequent handlers
		c.Locals(sessionLocal, s)
		return c.Next()
	}
}

// AdminRequired rejects sessions without the admin role. It must run after SessionRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentSession(c).IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin role is required",
			})
		}
		return c.Next()
	}
}

// CurrentSession returns the session stored by SessionRequired, or nil.
func CurrentSession(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals(sessionLocal).(*session.Session)
	return s
}
