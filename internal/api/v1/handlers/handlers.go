package handlers

import (
	"taskboard/internal/apperrors"
	"taskboard/internal/models"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// currentSession rebuilds the caller's identity from the locals set by the
// token middleware.
func currentSession(c *fiber.Ctx) models.Session {
	return models.Session{
		UserID: c.Locals("userID").(int),
		Role:   models.Role(c.Locals("role").(string)),
	}
}

// fail maps a domain error onto its HTTP status and the standard response
// envelope. Authorization failures also go to the security log.
func fail(c *fiber.Ctx, err error) error {
	status := apperrors.StatusCode(err)
	switch status {
	case 403:
		logger.SecurityLogger.Warn("Authorization failure",
			zap.String("url", c.OriginalURL()), zap.Error(err))
	case 500:
		logger.ErrorLogger.Error("Internal error",
			zap.String("url", c.OriginalURL()), zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Internal server error",
			"success": false,
			"status":  500,
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"message": err.Error(),
		"success": false,
		"status":  status,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(400).JSON(fiber.Map{
		"message": msg,
		"success": false,
		"status":  400,
	})
}
