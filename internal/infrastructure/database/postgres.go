package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"storefront-backend/pkg/logger"
)

const defaultConnectTimeout = 10 * time.Second

// DBConfig holds connection and pool settings for PostgreSQL
type DBConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DBName   string
	SSLMode  string

	// Pool
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration

	// Connect retry; the delay doubles after each failed attempt
	MaxRetries     int
	RetryDelay     time.Duration
	ConnectTimeout time.Duration
}

// PostgresDB owns the pool lifecycle
type PostgresDB struct {
	Pool   *pgxpool.Pool
	Config *DBConfig
}

func NewPostgresDB(config *DBConfig) *PostgresDB {
	return &PostgresDB{Config: config}
}

// DSN renders the config as a postgres URL
func (c *DBConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.DBName,
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + c.SSLMode
	}
	return u.String()
}

func (db *PostgresDB) configurePool() (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(db.Config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Unset values keep the pgx defaults; a zero HealthCheckPeriod would
	// make the pool's ticker panic.
	if db.Config.MaxConns > 0 {
		config.MaxConns = db.Config.MaxConns
	}
	if db.Config.MinConns > 0 {
		config.MinConns = db.Config.MinConns
	}
	if db.Config.MaxConnLifetime > 0 {
		config.MaxConnLifetime = db.Config.MaxConnLifetime
	}
	if db.Config.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = db.Config.MaxConnIdleTime
	}
	if db.Config.HealthCheckPeriod > 0 {
		config.HealthCheckPeriod = db.Config.HealthCheckPeriod
	}
	if db.Config.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = db.Config.ConnectTimeout
	}

	return config, nil
}

// Connect opens the pool, retrying with exponential backoff until
// MaxRetries attempts have failed
func (db *PostgresDB) Connect(ctx context.Context) error {
	config, err := db.configurePool()
	if err != nil {
		return fmt.Errorf("pool configuration failed: %w", err)
	}

	attempts := db.Config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	delay := db.Config.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(delay))

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pool, err := db.tryConnect(ctx, config)
		if err != nil {
			logger.Info("database connection attempt failed", map[string]interface{}{
				"attempt":      attempt,
				"max_attempts": attempts,
				"error":        err.Error(),
			})
			return retry.RetryableError(err)
		}
		db.Pool = pool
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect after %d attempts: %w", attempt, err)
	}

	logger.Info("database connection established", map[string]interface{}{
		"host":     db.Config.Host,
		"database": db.Config.DBName,
		"attempt":  attempt,
	})
	return nil
}

func (db *PostgresDB) tryConnect(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
	timeout := db.Config.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
