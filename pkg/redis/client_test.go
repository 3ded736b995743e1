package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/medjobs/jobquery/pkg/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	c, err := NewClient(context.Background(), config.RedisConfig{Addr: addr, DB: 15, PoolSize: 2})
	if err != nil {
		t.Skipf("skipping: redis unavailable: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, found, err := c.Get(ctx, "jobquery:test:missing"); err != nil || found {
		t.Fatalf("Get missing = found %v, err %v", found, err)
	}
	if err := c.Set(ctx, "jobquery:test:a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "jobquery:test:b", []byte("2"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, found, err := c.Get(ctx, "jobquery:test:a")
	if err != nil || !found || string(v) != "1" {
		t.Fatalf("Get = %q %v %v", v, found, err)
	}

	deleted, err := c.DeleteByPattern(ctx, "jobquery:test:*")
	if err != nil {
		t.Fatalf("DeleteByPattern: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
