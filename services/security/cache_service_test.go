package security

import (
	"context"
	"testing"
	"time"
)

func TestCacheKeepsFirstResponse(t *testing.T) {
	c := NewCache(time.Minute)
	ctx := context.Background()

	if _, found, _ := c.Get(ctx, "k"); found {
		t.Fatal("empty cache reported a hit")
	}

	c.Save(ctx, "k", CachedResponse{Status: 201, Body: []byte(`{"id":"1"}`)})
	c.Save(ctx, "k", CachedResponse{Status: 201, Body: []byte(`{"id":"2"}`)})

	got, found, err := c.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Get = %v, %v", found, err)
	}
	if string(got.Body) != `{"id":"1"}` {
		t.Errorf("Body = %s, want the first response", got.Body)
	}
}

func TestCacheExpires(t *testing.T) {
	c := NewCache(20 * time.Millisecond)
	ctx := context.Background()
	c.Save(ctx, "k", CachedResponse{Status: 201})

	time.Sleep(40 * time.Millisecond)
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("expired entry still returned")
	}
}

func TestCacheReservationIsExclusive(t *testing.T) {
	c := NewCache(time.Minute)
	ctx := context.Background()

	if ok, err := c.Reserve(ctx, "k"); err != nil || !ok {
		t.Fatalf("first Reserve = %v, %v", ok, err)
	}
	if ok, _ := c.Reserve(ctx, "k"); ok {
		t.Error("second Reserve succeeded while the key was held")
	}
	if ok, _ := c.Reserve(ctx, "other"); !ok {
		t.Error("Reserve of an unrelated key failed")
	}

	c.Release(ctx, "k")
	if ok, _ := c.Reserve(ctx, "k"); !ok {
		t.Error("Reserve failed after Release")
	}
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("a reservation must not look like a stored response")
	}
}
