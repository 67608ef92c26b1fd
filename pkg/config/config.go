package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds environment driven settings for the API server.
type Config struct {
	Env            string
	Host           string
	Port           string
	AllowedOrigins []string
	LogLevel       string

	JWTSecret   string
	FrontendURL string

	Database  DatabaseConfig
	Razorpay  RazorpayConfig
	ImageHost ImageHostConfig
	Email     EmailConfig
	Redis     RedisConfig
}

// RazorpayConfig contains payment gateway credentials.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

// ImageHostConfig contains the image hosting service configuration.
type ImageHostConfig struct {
	UploadURL string
	APIKey    string
	APISecret string
	Folder    string
}

// EmailConfig contains email/SMTP configuration.
type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// RedisConfig contains cache connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
	RunMigrations   bool
}

// Load builds a Config from environment variables with sensible defaults.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Env:         getEnv("STUDYHUB_ENV", "development"),
		Host:        getEnv("STUDYHUB_HOST", "0.0.0.0"),
		Port:        getEnv("STUDYHUB_PORT", "8080"),
		LogLevel:    getEnv("STUDYHUB_LOG_LEVEL", "info"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-me"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	cfg.AllowedOrigins = splitAndTrim(os.Getenv("STUDYHUB_ALLOWED_ORIGINS"))
	cfg.Database = loadDatabaseConfig()
	cfg.Razorpay = loadRazorpayConfig()
	cfg.ImageHost = loadImageHostConfig()
	cfg.Email = loadEmailConfig()
	cfg.Redis = loadRedisConfig()

	return cfg, nil
}

// ServerAddress joins the host and port into a listen address.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsProduction reports whether the app is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// DSN builds a PostgreSQL DSN for gorm.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
		d.TimeZone,
	)
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("STUDYHUB_DB_HOST", "127.0.0.1"),
		Port:            getEnv("STUDYHUB_DB_PORT", "5432"),
		User:            getEnv("STUDYHUB_DB_USER", "postgres"),
		Password:        os.Getenv("STUDYHUB_DB_PASSWORD"),
		Name:            getEnv("STUDYHUB_DB_NAME", "studyhub"),
		SSLMode:         getEnv("STUDYHUB_DB_SSLMODE", "disable"),
		TimeZone:        getEnv("STUDYHUB_DB_TIMEZONE", "UTC"),
		MaxIdleConns:    getEnvAsInt("STUDYHUB_DB_MAX_IDLE_CONNS", 5),
		MaxOpenConns:    getEnvAsInt("STUDYHUB_DB_MAX_OPEN_CONNS", 20),
		ConnMaxLifetime: getEnvAsInt("STUDYHUB_DB_CONN_MAX_LIFETIME", 1800),
		ConnMaxIdleTime: getEnvAsInt("STUDYHUB_DB_CONN_MAX_IDLE_TIME", 300),
		RunMigrations:   getEnvAsBool("STUDYHUB_DB_RUN_MIGRATIONS", false),
	}
}

func loadRazorpayConfig() RazorpayConfig {
	return RazorpayConfig{
		KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		BaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
	}
}

func loadImageHostConfig() ImageHostConfig {
	return ImageHostConfig{
		UploadURL: getEnv("IMAGE_HOST_UPLOAD_URL", ""),
		APIKey:    getEnv("IMAGE_HOST_API_KEY", ""),
		APISecret: getEnv("IMAGE_HOST_API_SECRET", ""),
		Folder:    getEnv("FOLDER_NAME", "studyhub"),
	}
}

func loadEmailConfig() EmailConfig {
	return EmailConfig{
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:     getEnv("SMTP_PORT", "587"),
		Username: getEnv("SMTP_USER", ""),
		Password: getEnv("SMTP_PASS", ""),
		From:     getEnv("SMTP_FROM", "noreply@studyhub.example.com"),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return fallback
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var cleaned []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	return cleaned
}
