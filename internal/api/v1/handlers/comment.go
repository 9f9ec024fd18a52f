package handlers

import (
	"taskboard/internal/config"
	"taskboard/internal/repository"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func AddComment(c *fiber.Ctx) error {
	session := currentSession(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return badRequest(c, "Invalid task ID")
	}

	type CommentRequest struct {
		Body string `json:"body"`
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in add comment", zap.Error(err))
		return badRequest(c, "Bad request")
	}

	comment, err := repository.AddComment(config.DB, session, taskID, req.Body)
	if err != nil {
		return fail(c, err)
	}

	logger.AuditLogger.Info("Comment added",
		zap.Int("task_id", taskID), zap.Int("comment_id", comment.ID))
	return c.Status(201).JSON(fiber.Map{
		"message": "Comment added successfully",
		"success": true,
		"status":  201,
		"data":    comment,
	})
}

func ListComments(c *fiber.Ctx) error {
	session := currentSession(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return badRequest(c, "Invalid task ID")
	}

	comments, err := repository.ListComments(config.DB, session, taskID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Comments fetched successfully",
		"success": true,
		"status":  200,
		"data":    comments,
	})
}
