package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabasePath  string // SQLite file, used when StoreDriver is sqlite

	RedisAddr string

	JWTSecret string
	TokenTTL  time.Duration

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	HealthCheckSchedule string
	LogLevel            string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "40"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	driver := getEnv("STORE_DRIVER", DriverMongo)
	if driver != DriverMongo && driver != DriverSQLite {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", driver)
	}

	dbName := getEnv("DB_NAME", "userdir")

	return &Config{
		ServerPort:          port,
		StoreDriver:         driver,
		MongoURI:            getEnv("MONGO_URI", mongoURIFromParts(dbName)),
		MongoDatabase:       getEnv("MONGO_DATABASE", dbName),
		DatabasePath:        getEnv("DATABASE_PATH", "./userdir.db"),
		RedisAddr:           getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),
		JWTSecret:           getEnv("JWT_ACCESS_SECRET_KEY", "secret-key"),
		TokenTTL:            ttl,
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitRPS:        rps,
		RateLimitBurst:      burst,
		HealthCheckSchedule: getEnv("HEALTH_CHECK_SCHEDULE", "@every 30s"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}, nil
}

// mongoURIFromParts builds a connection string from DB_USER, DB_PASSWORD and
// DB_HOST when DB_HOST is set.
func mongoURIFromParts(dbName string) string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return "mongodb://localhost:27017"
	}
	creds := ""
	if user := os.Getenv("DB_USER"); user != "" {
		creds = user + ":" + os.Getenv("DB_PASSWORD") + "@"
	}
	return "mongodb://" + creds + host + "/" + dbName
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
