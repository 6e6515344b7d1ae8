package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Review   ReviewConfig
	SMTP     SMTPConfig
	SMS      SMSConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// ReviewConfig drives the review follow-up engine
type ReviewConfig struct {
	// PublicBaseURL is the origin the review/unsubscribe links point at
	PublicBaseURL string
	// FallbackReviewURL is where the click redirect lands when the company
	// has no Google review link configured
	FallbackReviewURL string
	ReconcileInterval time.Duration
	WarmUpDelay       time.Duration
	// WorkerLimit bounds concurrent sends within one reconciliation pass
	WorkerLimit int
	SendTimeout time.Duration
	FromEmail   string
	FromPhone   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type SMSConfig struct {
	AccountSID string
	AuthToken  string
	APIBaseURL string
}

var AppConfig *Config

func Load() {
	AppConfig = &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "review_service_db"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-this-in-production"),
			ExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 24),
		},
		Review: ReviewConfig{
			PublicBaseURL:     getEnv("REVIEW_PUBLIC_BASE_URL", "http://localhost:8080"),
			FallbackReviewURL: getEnv("REVIEW_FALLBACK_URL", ""),
			ReconcileInterval: getEnvAsDuration("REVIEW_RECONCILE_INTERVAL", time.Hour),
			WarmUpDelay:       getEnvAsDuration("REVIEW_WARMUP_DELAY", 30*time.Second),
			WorkerLimit:       getEnvAsInt("REVIEW_WORKER_LIMIT", 8),
			SendTimeout:       getEnvAsDuration("REVIEW_SEND_TIMEOUT", 10*time.Second),
			FromEmail:         getEnv("REVIEW_FROM_EMAIL", "reviews@example.com"),
			FromPhone:         getEnv("REVIEW_FROM_PHONE", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
		},
		SMS: SMSConfig{
			AccountSID: getEnv("SMS_ACCOUNT_SID", ""),
			AuthToken:  getEnv("SMS_AUTH_TOKEN", ""),
			APIBaseURL: getEnv("SMS_API_BASE_URL", "https://api.twilio.com/2010-04-01"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
