package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DevJWTSecret signs sessions when JWT_SECRET is unset. Validate rejects it
// outside development.
const DevJWTSecret = "change-me"

var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set when APP_ENV is not development")

type Config struct {
	AppPort string
	AppMode string
	AppEnv  string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	JWTSecret     string
	JWTExpiryDays int
	CookieName    string
	AvatarBaseURL string

	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	ProfileCacheTTL   time.Duration
	RateLimitAuth     int
	RateLimitMessages int
	OutboxEnabled     bool
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if _, ok := os.LookupEnv("JWT_SECRET"); !ok {
		log.Println("JWT_SECRET not set, falling back to the development secret")
	}

	return &Config{
		AppPort:           getEnv("APP_PORT", "8080"),
		AppMode:           getEnv("APP_MODE", "debug"),
		AppEnv:            getEnv("APP_ENV", "development"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "relay_chat"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		JWTSecret:         getEnv("JWT_SECRET", DevJWTSecret),
		JWTExpiryDays:     getEnvAsInt("JWT_EXPIRY_DAYS", 30),
		CookieName:        getEnv("COOKIE_NAME", "jwt"),
		AvatarBaseURL:     getEnv("AVATAR_BASE_URL", "https://avatar.iran.liara.run/public"),
		RedisEnabled:      getEnvAsBool("REDIS_ENABLED", true),
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		ProfileCacheTTL:   time.Duration(getEnvAsInt("PROFILE_CACHE_TTL_SEC", 300)) * time.Second,
		RateLimitAuth:     getEnvAsInt("RATE_LIMIT_AUTH", 5),
		RateLimitMessages: getEnvAsInt("RATE_LIMIT_MESSAGES", 60),
		OutboxEnabled:     getEnvAsBool("OUTBOX_ENABLED", true),
	}
}

// IsDevelopment reports whether cookies may be sent without the Secure flag.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Validate reports settings that must not reach a non-development deployment.
func (c *Config) Validate() error {
	if !c.IsDevelopment() && (c.JWTSecret == "" || c.JWTSecret == DevJWTSecret) {
		return ErrInsecureJWTSecret
	}
	return nil
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.JWTExpiryDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
