package api

import (
	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/finternet/finternet-backend/services/redis"
	"github.com/finternet/finternet-backend/services/security"
	"github.com/finternet/finternet-backend/utils"
)

// NewIdempotencyStore returns a Redis backed store when REDIS_HOST is set and
// an in-process cache otherwise. The returned func releases the store.
func NewIdempotencyStore(c *utils.Config, l *logging.Logger) (security.IdempotencyStore, func(), error) {
	if c.RedisHost == "" {
		cache := security.NewCache(c.IdempotencyTTL)
		l.Info("using in-memory idempotency store")
		return cache, cache.Stop, nil
	}

	r, err := redis.NewRedisService(&redis.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		TTL:      c.IdempotencyTTL,
	})
	if err != nil {
		return nil, nil, err
	}

	l.WithField("host", c.RedisHost).Info("using redis idempotency store")
	return r, func() {
		if err := r.Close(); err != nil {
			l.WithError(err).Warn("closing redis")
		}
	}, nil
}
