package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/andrewpaige1/workbook-api/logger"
)

func TestRedisListingRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis cache tests")
	}

	ctx := context.Background()
	c, err := NewRedis(ctx, addr, "test:"+t.Name()+":", Config{TTL: time.Minute}, logger.Nop())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer c.Close()

	root := KeyFor("u1", nil)
	sub := KeyFor("u1", strPtr("d1"))
	c.Set(ctx, root, sampleItems())
	c.Set(ctx, sub, sampleItems())

	got, ok := c.Get(ctx, root)
	if !ok || len(got) != 2 || got[0].Directory == nil || got[0].Directory.Name != "Math" {
		t.Fatalf("unexpected round trip: ok=%v items=%+v", ok, got)
	}

	c.Invalidate(ctx, root)
	if _, ok := c.Get(ctx, root); ok {
		t.Error("root listing should be gone")
	}

	c.InvalidateOwner(ctx, "u1")
	if _, ok := c.Get(ctx, sub); ok {
		t.Error("owner invalidation should remove sub listing")
	}
}
