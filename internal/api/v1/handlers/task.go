package handlers

import (
	"time"

	"taskboard/internal/config"
	"taskboard/internal/models"
	"taskboard/internal/repository"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Task handlers. Every one of them re-reads the store; task lists are
// never cached because the derived status depends on the wall clock.

func CreateTask(c *fiber.Ctx) error {
	session := currentSession(c)

	type TaskRequest struct {
		Title       string    `json:"title" validate:"required"`
		Description string    `json:"description"`
		DueDate     time.Time `json:"due_date" validate:"required"`
		Priority    string    `json:"priority" validate:"omitempty,oneof=Low Medium High"`
		Category    string    `json:"category"`
		AssignedTo  int       `json:"assigned_to" validate:"required"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return badRequest(c, "Bad request")
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.ErrorLogger.Error("Validation error in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	task, err := repository.CreateTask(config.DB, session, repository.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    models.Priority(req.Priority),
		Category:    req.Category,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return fail(c, err)
	}

	logger.AuditLogger.Info("Task created successfully",
		zap.Int("task_id", task.ID), zap.Int("created_by", session.UserID))
	return c.Status(201).JSON(fiber.Map{
		"message": "Task created successfully",
		"success": true,
		"status":  201,
		"data":    task,
	})
}

func ListTasks(c *fiber.Ctx) error {
	session := currentSession(c)

	tasks, err := repository.ListTasks(config.DB, session)
	if err != nil {
		return fail(c, err)
	}

	logger.AuditLogger.Info("Tasks fetched successfully", zap.Int("count", len(tasks)))
	return c.JSON(fiber.Map{
		"message": "Tasks fetched successfully",
		"success": true,
		"status":  200,
		"data":    tasks,
	})
}

func ListOverdueTasks(c *fiber.Ctx) error {
	session := currentSession(c)

	tasks, err := repository.ListOverdue(config.DB, session, time.Now())
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Overdue tasks fetched successfully",
		"success": true,
		"status":  200,
		"data":    tasks,
	})
}

func ListDueSoonTasks(c *fiber.Ctx) error {
	session := currentSession(c)

	tasks, err := repository.ListDueWithin(config.DB, session, time.Now(), models.DueSoonHorizon)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Due soon tasks fetched successfully",
		"success": true,
		"status":  200,
		"data":    tasks,
	})
}

func GetTask(c *fiber.Ctx) error {
	session := currentSession(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return badRequest(c, "Invalid task ID")
	}

	task, err := repository.GetTask(config.DB, session, taskID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Task found",
		"success": true,
		"status":  200,
		"data":    task,
	})
}

func UpdateTask(c *fiber.Ctx) error {
	session := currentSession(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return badRequest(c, "Invalid task ID")
	}

	// Pointer fields mark which columns the caller actually sent.
	type UpdateTaskRequest struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		DueDate     *time.Time `json:"due_date"`
		Priority    *string    `json:"priority"`
		Category    *string    `json:"category"`
		AssignedTo  *int       `json:"assigned_to"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return badRequest(c, "Bad request")
	}

	var priority *models.Priority
	if req.Priority != nil {
		p := models.Priority(*req.Priority)
		priority = &p
	}

	task, err := repository.UpdateTask(config.DB, session, taskID, repository.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    priority,
		Category:    req.Category,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return fail(c, err)
	}

	logger.AuditLogger.Info("Task updated", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task updated successfully",
		"success": true,
		"status":  200,
		"data":    task,
	})
}

func CompleteTask(c *fiber.Ctx) error {
	session := currentSession(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return badRequest(c, "Invalid task ID")
	}

	task, err := repository.CompleteTask(config.DB, session, taskID, config.AllowManagerComplete)
	if err != nil {
		return fail(c, err)
	}

	logger.AuditLogger.Info("Task completed",
		zap.Int("task_id", taskID), zap.Int("user_id", session.UserID))
	return c.JSON(fiber.Map{
		"message": "Task marked as completed",
		"success": true,
		"status":  200,
		"data":    task,
	})
}

func DeleteTask(c *fiber.Ctx) error {
	session := currentSession(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return badRequest(c, "Invalid task ID")
	}

	if err := repository.DeleteTask(config.DB, session, taskID); err != nil {
		return fail(c, err)
	}

	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task deleted successfully",
		"success": true,
		"status":  200,
	})
}
