package middleware

import (
	"fmt"
	"strings"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// SessionKey builds the redis key under which a live token is registered.
func SessionKey(token string) string {
	return "session:" + token
}

// UseToken validates the bearer token, checks it against the session
// registry and stores the caller's identity in locals.
func UseToken(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No token provided"})
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token format"})
	}
	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return config.SecretKey, nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token claims"})
	}
	if exp, ok := claims["exp"].(float64); !ok || int64(exp) < time.Now().Unix() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Token expired"})
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid user ID in token"})
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid role in token"})
	}
	role, err := models.ParseRole(roleStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid role in token"})
	}

	// A token that was never registered, or was revoked by logout, is
	// refused even while its signature is still valid.
	if config.RedisClient != nil {
		if err := config.RedisClient.Get(config.Ctx, SessionKey(parts[1])).Err(); err != nil {
			if err == redis.Nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Session expired or revoked"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Session store unavailable"})
		}
	}

	c.Locals("userID", int(userID))
	c.Locals("role", string(role))
	c.Locals("token", parts[1])
	return c.Next()
}
