package session

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the gateway and the session
// stack.
type Config struct {
	App     AppConfig
	Session SessionConfig
	Store   StoreConfig
	Redis   RedisConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name string
	Env  string
	Host string
	Port string
}

// SessionConfig defines session stack parameters.
type SessionConfig struct {
	APIBaseURL             string
	CookieName             string
	SecureCookies          bool
	CookieDurationHours    int
	RefreshIntervalMinutes int
	RefreshThresholdMin    int
	RequestTimeoutSeconds  int
	PhoneRegion            string
	AllowedOrigins         []string
}

// StoreConfig selects and configures the session store backend.
type StoreConfig struct {
	// Driver is one of "memory", "sqlite", "redis".
	Driver string
	DSN    string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoadConfig reads configuration from environment variables, applying
// defaults where possible. A .env file in the working directory is loaded
// first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "session-gate"),
			Env:  getEnv("APP_ENV", "development"),
			Host: getEnv("APP_HOST", "0.0.0.0"),
			Port: getEnv("APP_PORT", "8080"),
		},
		Session: SessionConfig{
			APIBaseURL:             getEnv("SESSION_API_BASE_URL", "http://localhost:8000"),
			CookieName:             getEnv("SESSION_COOKIE_NAME", DefaultCookieName),
			SecureCookies:          getEnvAsBool("SESSION_SECURE_COOKIES", false),
			CookieDurationHours:    getEnvAsInt("SESSION_COOKIE_DURATION_HOURS", 24),
			RefreshIntervalMinutes: getEnvAsInt("SESSION_REFRESH_INTERVAL_MINUTES", 4),
			RefreshThresholdMin:    getEnvAsInt("SESSION_REFRESH_THRESHOLD_MINUTES", 5),
			RequestTimeoutSeconds:  getEnvAsInt("SESSION_REQUEST_TIMEOUT_SECONDS", 30),
			PhoneRegion:            getEnv("SESSION_PHONE_REGION", "US"),
			AllowedOrigins:         splitList(getEnv("SESSION_ALLOWED_ORIGINS", "")),
		},
		Store: StoreConfig{
			Driver: getEnv("SESSION_STORE_DRIVER", "memory"),
			DSN:    getEnv("SESSION_STORE_DSN", "file:session.db?cache=shared"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the app runs in production mode.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// RequestTimeout returns the configured upstream request timeout.
func (s SessionConfig) RequestTimeout() time.Duration {
	if s.RequestTimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// RefreshInterval returns the monitor tick interval.
func (s SessionConfig) RefreshInterval() time.Duration {
	if s.RefreshIntervalMinutes <= 0 {
		return DefaultRefreshInterval
	}
	return time.Duration(s.RefreshIntervalMinutes) * time.Minute
}

// RefreshThreshold returns the remaining-lifetime threshold.
func (s SessionConfig) RefreshThreshold() time.Duration {
	if s.RefreshThresholdMin <= 0 {
		return DefaultRefreshThreshold
	}
	return time.Duration(s.RefreshThresholdMin) * time.Minute
}

// CookieDuration returns the mirrored cookie lifetime.
func (s SessionConfig) CookieDuration() time.Duration {
	if s.CookieDurationHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.CookieDurationHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
