package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tsdmkp/idle-garage-game-backend/pkg/config"
)

// Type for the client.
type RedisClient struct {
	*redis.Client
}

// NewClient connects to redis.
// Returns nil without error when no host is configured, redis is optional for the duel system.
func NewClient(cfg config.RedisConfiguration) (*RedisClient, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host + ":" + cfg.Port,
		Password:     cfg.Password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     50,
		MinIdleConns: 5,
		PoolTimeout:  30 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("couldn't ping redis: %w", err)
	}

	return &RedisClient{Client: client}, nil
}

// Close the client connection.
func (r *RedisClient) Close() error {
	return r.Client.Close()
}

// Acquire sets the key only when it doesn't exist yet.
func (r *RedisClient) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.Client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

// Release removes the key.
func (r *RedisClient) Release(ctx context.Context, key string) error {
	return r.Client.Del(ctx, key).Err()
}
