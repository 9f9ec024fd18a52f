package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort    int
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBNameTest string
	RedisHost  string
	RedisPort  int
	JWTSecret  string

	// AllowManagerComplete decides whether Admin/Manager may complete a
	// task they are not assigned to. The source dashboards disagree on
	// this, so it is a flag rather than a hardcoded rule.
	AllowManagerComplete bool

	// Bootstrap admin credentials, seeded at startup when set.
	AdminUsername string
	AdminPassword string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		// Only log outside of tests
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	appPort, err := strconv.Atoi(os.Getenv("APP_PORT"))
	if err != nil {
		appPort = 3004
	}

	dbPort, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		dbPort = 5432
	}

	redisPort, err := strconv.Atoi(os.Getenv("REDIS_PORT"))
	if err != nil {
		redisPort = 6379
	}

	allowManagerComplete, err := strconv.ParseBool(os.Getenv("ALLOW_MANAGER_COMPLETE"))
	if err != nil {
		allowManagerComplete = true
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "secret"
	}

	return Config{
		AppPort:              appPort,
		DBHost:               os.Getenv("DB_HOST"),
		DBPort:               dbPort,
		DBUser:               os.Getenv("DB_USER"),
		DBPassword:           os.Getenv("DB_PASSWORD"),
		DBName:               os.Getenv("DB_NAME"),
		DBNameTest:           os.Getenv("DB_NAME_TEST"),
		RedisHost:            os.Getenv("REDIS_HOST"),
		RedisPort:            redisPort,
		JWTSecret:            secret,
		AllowManagerComplete: allowManagerComplete,
		AdminUsername:        os.Getenv("ADMIN_USERNAME"),
		AdminPassword:        os.Getenv("ADMIN_PASSWORD"),
	}
}
