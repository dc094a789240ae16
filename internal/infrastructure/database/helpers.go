package database

import (
	"context"
	"fmt"
	"time"

	"storefront-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

// Ping is used by the readiness endpoint
func (db *PostgresDB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.Pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close is safe to call more than once
func (db *PostgresDB) Close() {
	if db.Pool == nil {
		return
	}
	db.Pool.Close()
	db.Pool = nil
	logger.Info("database connection pool closed", nil)
}

// PoolStats is the subset of pgxpool.Stat reported by the health endpoint
type PoolStats struct {
	TotalConns    int32 `json:"totalConns"`
	IdleConns     int32 `json:"idleConns"`
	AcquiredConns int32 `json:"acquiredConns"`
	MaxConns      int32 `json:"maxConns"`
}

func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	s := db.Pool.Stat()
	return &PoolStats{
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
		MaxConns:      s.MaxConns(),
	}, nil
}
