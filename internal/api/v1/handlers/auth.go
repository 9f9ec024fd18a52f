package handlers

import (
	"time"

	"taskboard/internal/config"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/repository"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// tokenTTL is the lifetime of a login session, for both the JWT expiry and
// the redis registry entry.
const tokenTTL = 12 * time.Hour

// Register provisions a self-serve account. The role is always User;
// Admin/Manager accounts only come from seeding.
func Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,excludesall=@?"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return badRequest(c, "Bad request")
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	user, err := repository.CreateUser(config.DB, req.Username, req.Password, models.RoleUser)
	if err != nil {
		return fail(c, err)
	}

	logger.AuditLogger.Info("User registered successfully", zap.Int("user_id", user.ID))
	return c.Status(201).JSON(fiber.Map{
		"message": "User created successfully",
		"success": true,
		"status":  201,
		"data": fiber.Map{
			"id": user.ID,
		},
	})
}

// Login checks credentials and hands out a signed token, registering it in
// redis so logout can revoke it before expiry.
func Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return badRequest(c, "Bad request")
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	session, err := repository.Authenticate(config.DB, req.Username, req.Password)
	if err != nil {
		// One undifferentiated 401 for unknown username and wrong
		// password alike.
		logger.SecurityLogger.Warn("Login failed", zap.String("username", req.Username))
		return c.Status(401).JSON(fiber.Map{
			"message": "Invalid credentials",
			"success": false,
			"status":  401,
		})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": session.UserID,
		"role":    string(session.Role),
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(config.SecretKey)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error generating token",
			"success": false,
			"status":  500,
		})
	}

	if config.RedisClient != nil {
		if err := config.RedisClient.Set(config.Ctx, middleware.SessionKey(tokenString), session.UserID, tokenTTL).Err(); err != nil {
			logger.ErrorLogger.Error("Error registering session", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Error registering session",
				"success": false,
				"status":  500,
			})
		}
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", session.UserID), zap.String("role", string(session.Role)))
	return c.JSON(fiber.Map{
		"message": "Login success",
		"success": true,
		"status":  200,
		"data": fiber.Map{
			"user_id": session.UserID,
			"role":    session.Role,
			"token":   tokenString,
		},
	})
}

// Logout revokes the current token. The old dashboard had a logout button;
// here it removes the registry entry so the token dies immediately.
func Logout(c *fiber.Ctx) error {
	session := currentSession(c)
	token := c.Locals("token").(string)

	if config.RedisClient != nil {
		if err := config.RedisClient.Del(config.Ctx, middleware.SessionKey(token)).Err(); err != nil {
			logger.ErrorLogger.Error("Error revoking session", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Error revoking session",
				"success": false,
				"status":  500,
			})
		}
	}

	logger.AuditLogger.Info("Logout", zap.Int("user_id", session.UserID))
	return c.JSON(fiber.Map{
		"message": "Logged out",
		"success": true,
		"status":  200,
	})
}
