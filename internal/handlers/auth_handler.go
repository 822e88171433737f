package handlers

import (
	"time"

	"storefront/internal/cart"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/session"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	sessions *session.Manager
	carts    *cart.Registry
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *session.Manager, carts *cart.Registry) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		carts:    carts,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireSession fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", requireSession, h.HandleLogout)
	authRoutes.Get("/me", requireSession, h.HandleMe)
}

// HandleLogin exchanges credentials with the backend and starts a session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var creds models.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	s, token, err := h.sessions.Login(creds)
	if err != nil {
		log.Printf("Error during login for %s: %v", creds.Email, err)
		return respondError(c, err, "Authentication failed")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessions.TTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    s,
	})
}

// HandleLogout clears the session and drops the session's cart.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	s := current(c)
	if err := h.sessions.Logout(s.ID); err != nil {
		return respondError(c, err, "Could not log out")
	}
	h.carts.Discard(s.ID)
	c.ClearCookie(middleware.SessionCookie)
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

// HandleMe returns the signed-in user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	s := current(c)
	return c.JSON(fiber.Map{
		"user":    s,
		"isAdmin": s.IsAdmin(),
	})
}
