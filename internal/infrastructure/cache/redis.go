package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"storefront-backend/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

// RedisClient owns the go-redis client shared by the guest cart store and
// the product cache
type RedisClient struct {
	Client *redis.Client

	addr     string
	password string
	db       int
}

func NewRedisClient(addr, password string, db int) *RedisClient {
	return &RedisClient{
		Client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
		addr:     addr,
		password: password,
		db:       db,
	}
}

// Connect verifies the server is reachable
func (r *RedisClient) Connect(ctx context.Context) error {
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	logger.Info("redis connected", map[string]interface{}{"addr": r.addr, "db": r.db})
	return nil
}

func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// AsynqOpt points asynq at the same Redis instance
func (r *RedisClient) AsynqOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     r.addr,
		Password: r.password,
		DB:       r.db,
	}
}

func (r *RedisClient) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
