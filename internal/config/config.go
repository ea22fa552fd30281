package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const defaultJWTSecret = "dev-secret-change-this-in-production"

type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string

	JWTSecret            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	CookieSecure         bool

	// Empty RedisAddr selects the in-memory hub.
	RedisAddr string
	ServerID  string

	CORSOrigins   []string
	AuthRateLimit int

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("godotenv: no .env file loaded")
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		MongoURI:             getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:        getEnv("MONGODB_DATABASE", "matchmaker"),
		JWTSecret:            getEnv("JWT_SECRET", defaultJWTSecret),
		AccessTokenDuration:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenDuration: getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		CookieSecure:         getBool("COOKIE_SECURE", false),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		ServerID:             getEnv("SERVER_ID", "server-1"),
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "*")),
		AuthRateLimit:        getInt("AUTH_RATE_LIMIT", 30),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
		LogFile:              getEnv("LOG_FILE", ""),
	}
	return cfg
}

func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
