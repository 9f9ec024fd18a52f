package handlers

import (
	"taskboard/internal/config"
	"taskboard/internal/repository"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GetAllUsers lists every account; manage-only.
func GetAllUsers(c *fiber.Ctx) error {
	session := currentSession(c)

	users, err := repository.ListUsers(config.DB, session)
	if err != nil {
		return fail(c, err)
	}

	logger.AuditLogger.Info("Users fetched successfully", zap.Int("count", len(users)))
	return c.JSON(fiber.Map{
		"message": "Users fetched successfully",
		"success": true,
		"status":  200,
		"data":    users,
	})
}

// GetUser returns a single account, visible to managers and to the account
// holder.
func GetUser(c *fiber.Ctx) error {
	session := currentSession(c)

	targetID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid user ID", zap.Error(err))
		return badRequest(c, "Invalid user ID")
	}

	user, err := repository.GetUser(config.DB, session, targetID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "User found",
		"success": true,
		"status":  200,
		"data":    user,
	})
}
