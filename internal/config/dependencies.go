package config

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
)

var (
	// Global dependencies shared across the application. SecretKey and
	// AllowManagerComplete are overwritten from the loaded config at
	// startup; the defaults here only serve tests that skip LoadConfig.
	DB          *sql.DB
	SecretKey   = []byte("secret")
	Validate    = validator.New()
	Ctx         = context.Background()
	RedisClient *redis.Client

	AllowManagerComplete = true
)
