package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"
)

// DBConfig holds database connection settings.
type DBConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
	Env  string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// SMTPConfig holds outgoing mail settings for notification delivery.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// WorkerConfig holds scheduled-task worker settings.
type WorkerConfig struct {
	PollInterval time.Duration
}

// Config is the process-wide configuration, loaded once in main and
// passed into constructors. No package keeps ambient config state.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	RedisURL string
	JWT      JWTConfig
	SMTP     SMTPConfig
	Worker   WorkerConfig
	LogLevel string
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional; system environment is used as-is.
		fmt.Println("No .env file found, using system environment")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		DB: DBConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		RedisURL: os.Getenv("REDIS_URL"),
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", ""),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("EMAIL_FROM"),
		},
		Worker: WorkerConfig{
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", 5*time.Minute),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWT.SigningKey == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvAsLogLevel(key string, fallback logger.LogLevel) logger.LogLevel {
	switch os.Getenv(key) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return fallback
	}
}
