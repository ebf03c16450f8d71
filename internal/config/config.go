package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	SMTP      SMTPConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Tracing   TracingConfig
	Booking   BookingConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Environment    string
	LogFilePath    string
	AllowedOrigins string
	FrontendURL    string
}

type DatabaseConfig struct {
	Driver          string // "mysql" or "postgres"
	DSN             string
	MaxAttempts     int
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	Issuer        string
	SessionSecret string
	SecureCookie  bool

	AdminUsername string
	AdminEmail    string
	AdminPassword string
	SeedDemoUsers bool
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	SenderName string
}

type RedisConfig struct {
	URL string
}

type NATSConfig struct {
	URL string
}

type TracingConfig struct {
	Endpoint string
}

type BookingConfig struct {
	MaxPerDay    int
	BasicPrice   float64
	PremiumPrice float64
	DeluxePrice  float64
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "baby-bliss"),
			Port:           getEnv("SERVER_PORT", "8080"),
			Environment:    getEnv("APP_ENV", "development"),
			LogFilePath:    getEnv("LOG_FILE_PATH", "logs/app.log"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "mysql")),
			DSN:             getEnv("DB_DSN", ""),
			MaxAttempts:     getEnvAsInt("DB_CONNECT_ATTEMPTS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTL:      getEnvAsDuration("JWT_TTL", 24*time.Hour),
			Issuer:        getEnv("JWT_ISSUER", "baby-bliss"),
			SessionSecret: getEnv("SESSION_SECRET", ""),
			SecureCookie:  getEnvAsBool("SESSION_SECURE_COOKIE", false),
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@babybliss.local"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "Admin123!"),
			SeedDemoUsers: getEnvAsBool("SEED_DEMO_USERS", false),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Username:   getEnv("SMTP_USERNAME", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			From:       getEnv("SMTP_FROM", "no-reply@babybliss.local"),
			SenderName: getEnv("SMTP_SENDER_NAME", "Baby Bliss"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Tracing: TracingConfig{
			Endpoint: getEnv("OTEL_EXPORTER_ENDPOINT", ""),
		},
		Booking: BookingConfig{
			MaxPerDay:    getEnvAsInt("BOOKINGS_MAX_PER_DAY", 2),
			BasicPrice:   getEnvAsFloat("PACKAGE_BASIC_PRICE", 5000),
			PremiumPrice: getEnvAsFloat("PACKAGE_PREMIUM_PRICE", 10000),
			DeluxePrice:  getEnvAsFloat("PACKAGE_DELUXE_PRICE", 15000),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 20),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("DB_DSN is not set")
	}
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return errors.New("DB_DRIVER must be mysql or postgres")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.Auth.SessionSecret == "" {
		c.Auth.SessionSecret = c.Auth.JWTSecret
	}
	if c.Booking.MaxPerDay < 1 {
		return errors.New("BOOKINGS_MAX_PER_DAY must be at least 1")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
