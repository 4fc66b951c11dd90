package security

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// ReservationTTL bounds how long an in-flight request holds its key.
const ReservationTTL = time.Minute

// CachedResponse is a stored reply for an Idempotency-Key.
type CachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	RecordID    string `json:"record_id,omitempty"`
}

// IdempotencyStore keeps replies for repeated Idempotency-Key requests.
// Reserve marks a key as in flight; only the holder may Save or Release it.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (CachedResponse, bool, error)
	Reserve(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, key string, resp CachedResponse) error
	Release(ctx context.Context, key string) error
}

// Cache is the in-process IdempotencyStore used when no Redis is configured.
type Cache struct {
	c   *cache.Cache
	ttl time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	// purge expired keys twice per window
	return &Cache{
		c:   cache.New(ttl, ttl/2),
		ttl: ttl,
	}
}

func reservationKey(key string) string {
	return "reserved:" + key
}

func (cm *Cache) Get(_ context.Context, key string) (CachedResponse, bool, error) {
	val, found := cm.c.Get(key)
	if !found {
		return CachedResponse{}, false, nil
	}
	return val.(CachedResponse), true, nil
}

// Reserve reports false when another request already holds key.
func (cm *Cache) Reserve(_ context.Context, key string) (bool, error) {
	return cm.c.Add(reservationKey(key), struct{}{}, ReservationTTL) == nil, nil
}

// Save keeps the first reply stored under key.
func (cm *Cache) Save(_ context.Context, key string, resp CachedResponse) error {
	// Add fails when the key exists, which is what we want
	_ = cm.c.Add(key, resp, cm.ttl)
	return nil
}

func (cm *Cache) Release(_ context.Context, key string) error {
	cm.c.Delete(reservationKey(key))
	return nil
}

func (cm *Cache) Stop() {
	cm.c.Flush()
}
