package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/finternet/finternet-backend/services/security"
	"github.com/redis/go-redis/v9"
)

type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisService(config *RedisConfig) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &RedisService{
		client: client,
		ttl:    config.TTL,
	}, nil
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}

// Get implements security.IdempotencyStore.
func (r *RedisService) Get(ctx context.Context, key string) (security.CachedResponse, bool, error) {
	raw, err := r.client.Get(ctx, idempotencyKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return security.CachedResponse{}, false, nil
	}
	if err != nil {
		return security.CachedResponse{}, false, fmt.Errorf("could not read idempotency key: %w", err)
	}

	var resp security.CachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return security.CachedResponse{}, false, fmt.Errorf("corrupt idempotency entry %s: %w", key, err)
	}
	return resp, true, nil
}

func reservationKey(key string) string {
	return fmt.Sprintf("idempotency-lock:%s", key)
}

// Reserve implements security.IdempotencyStore.
func (r *RedisService) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, reservationKey(key), 1, security.ReservationTTL).Result()
	if err != nil {
		return false, fmt.Errorf("could not reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Release implements security.IdempotencyStore.
func (r *RedisService) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, reservationKey(key)).Err(); err != nil {
		return fmt.Errorf("could not release idempotency key: %w", err)
	}
	return nil
}

// Save implements security.IdempotencyStore. The first reply wins.
func (r *RedisService) Save(ctx context.Context, key string, resp security.CachedResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	if err := r.client.SetNX(ctx, idempotencyKey(key), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("could not store idempotency key: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisService) Close() error {
	return r.client.Close()
}
