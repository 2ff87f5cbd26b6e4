package server

import (
	"log/slog"

	"docvault/internal/middleware"
	"docvault/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondError renders err with the status its kind maps to. Server-side
// failures are logged with their cause before being rendered opaquely.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "Request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// currentUserID returns the id AuthRequired stored in locals.
func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("userID").(string)
	return userID
}

func statusOK(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
