package handlers

import (
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler issues cart session tokens.
type SessionHandler struct {
	sessions *services.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterRoutes registers the session routes with the Fiber app.
func (h *SessionHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/sessions", h.HandleCreateSession)
}

// HandleCreateSession starts a new anonymous cart session.
func (h *SessionHandler) HandleCreateSession(c *fiber.Ctx) error {
	token, err := h.sessions.Issue()
	if err != nil {
		return respondError(c, err, "Could not start session")
	}
	return c.Status(fiber.StatusCreated).JSON(token)
}
