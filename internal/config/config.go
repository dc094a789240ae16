package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"storefront-backend/internal/infrastructure/database"
	"storefront-backend/internal/infrastructure/email"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds the whole application configuration, populated from the
// environment (and a .env file when present)
type Config struct {
	App        AppConfig
	Database   database.DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Cart       CartConfig
	CORS       CORSConfig
	Migrations MigrationsConfig
	Worker     WorkerConfig
	Email      email.SMTPConfig
	Reset      PasswordResetConfig
}

type AppConfig struct {
	Name            string
	Environment     string // development, staging, production
	Port            string
	Version         string
	ShutdownTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
}

type CartConfig struct {
	// Attempts per mutation before a version conflict surfaces as 409
	MaxMutationAttempts int
	RetryBackoff        time.Duration
	ClearOnLogout       bool
	GuestTTL            time.Duration
	SessionSecureCookie bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type MigrationsConfig struct {
	AutoMigrate bool
}

type PasswordResetConfig struct {
	// URL of the page that accepts the token, the token is appended
	URL string
	TTL time.Duration
}

type WorkerConfig struct {
	Concurrency int
	HealthAddr  string
}

// Load reads .env (if any) and the environment
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:            getEnv("APP_NAME", "Storefront API"),
			Environment:     getEnv("APP_ENV", "development"),
			Port:            getEnv("APP_PORT", "8080"),
			Version:         getEnv("APP_VERSION", "1.0.0"),
			ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: database.DBConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvInt("DB_PORT", 5432),
			Username:          getEnv("DB_USER", "storefront"),
			Password:          getEnv("DB_PASSWORD", ""),
			DBName:            getEnv("DB_NAME", "storefront"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime:   getEnvDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvDuration("DB_MAX_CONN_IDLE_TIME", time.Minute),
			HealthCheckPeriod: getEnvDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
			MaxRetries:        getEnvInt("DB_MAX_RETRIES", 5),
			RetryDelay:        getEnvDuration("DB_RETRY_DELAY", time.Second),
			ConnectTimeout:    getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTTL: getEnvDuration("JWT_ACCESS_TTL", 30*24*time.Hour),
		},
		Cart: CartConfig{
			MaxMutationAttempts: getEnvInt("CART_MAX_MUTATION_ATTEMPTS", 3),
			RetryBackoff:        getEnvDuration("CART_RETRY_BACKOFF", 10*time.Millisecond),
			ClearOnLogout:       getEnvBool("CART_CLEAR_ON_LOGOUT", false),
			GuestTTL:            getEnvDuration("CART_GUEST_TTL", 30*24*time.Hour),
			SessionSecureCookie: getEnvBool("SESSION_SECURE_COOKIE", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Migrations: MigrationsConfig{
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 10),
			HealthAddr:  getEnv("WORKER_HEALTH_ADDR", ":9999"),
		},
		Email: email.SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnv("SMTP_PORT", "1025"),
			From:     getEnv("SMTP_FROM", "noreply@storefront.local"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
		},
		Reset: PasswordResetConfig{
			URL: getEnv("PASSWORD_RESET_URL", "http://localhost:3000/reset-password"),
			TTL: getEnvDuration("PASSWORD_RESET_TTL", time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	if c.Cart.MaxMutationAttempts < 1 {
		return fmt.Errorf("CART_MAX_MUTATION_ATTEMPTS must be at least 1")
	}
	if c.Cart.RetryBackoff <= 0 {
		return fmt.Errorf("CART_RETRY_BACKOFF must be positive")
	}
	if c.Cart.GuestTTL <= 0 {
		return fmt.Errorf("CART_GUEST_TTL must be positive")
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}

	if c.Reset.TTL <= 0 {
		return fmt.Errorf("PASSWORD_RESET_TTL must be positive")
	}

	db := c.Database
	for name, d := range map[string]time.Duration{
		"DB_MAX_CONN_LIFETIME":   db.MaxConnLifetime,
		"DB_MAX_CONN_IDLE_TIME":  db.MaxConnIdleTime,
		"DB_HEALTH_CHECK_PERIOD": db.HealthCheckPeriod,
		"DB_CONNECT_TIMEOUT":     db.ConnectTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated value
func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
